// Package provisioner bridges account provisioning requests to the Azure
// Cosmos DB management plane.
package provisioner

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cosmos/armcosmos/v3"
	"github.com/kursadbilgin/cosmos-provisioner/internal/domain"
	"go.uber.org/zap"
)

// AzureProvisioner manages Cosmos DB account lifecycle operations through
// the armcosmos management client. It holds only read-only configuration and
// may be shared across concurrent flows.
type AzureProvisioner struct {
	accounts      *armcosmos.DatabaseAccountsClient
	resourceGroup string
	logger        *zap.Logger
}

func NewAzureProvisioner(cred azcore.TokenCredential, subscriptionID string, resourceGroup string, logger *zap.Logger) (*AzureProvisioner, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("subscription id is required")
	}
	if resourceGroup == "" {
		return nil, fmt.Errorf("resource group is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := armcosmos.NewDatabaseAccountsClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cosmos database accounts client: %w", err)
	}

	return &AzureProvisioner{
		accounts:      client,
		resourceGroup: resourceGroup,
		logger:        logger,
	}, nil
}

// CreateAccount submits a create-or-update for the account and returns once
// Azure has accepted it. The returned Operation waits for the long-running
// provisioning to finish.
func (p *AzureProvisioner) CreateAccount(ctx context.Context, req domain.AccountRequest) (Operation, error) {
	params := armcosmos.DatabaseAccountCreateUpdateParameters{
		Location: to.Ptr(req.Location),
		Kind:     to.Ptr(mapAccountKind(req.APIKind)),
		Properties: &armcosmos.DatabaseAccountCreateUpdateProperties{
			DatabaseAccountOfferType: to.Ptr("Standard"),
			Locations: []*armcosmos.Location{{
				LocationName:     to.Ptr(req.Location),
				FailoverPriority: to.Ptr[int32](0),
			}},
			APIProperties: apiProperties(req.APIKind),
		},
	}

	poller, err := p.accounts.BeginCreateOrUpdate(ctx, p.resourceGroup, req.Name, params, nil)
	if err != nil {
		return nil, newProviderError(fmt.Sprintf("create of account %q was rejected", req.Name), err)
	}

	p.logger.Info("account create accepted",
		zap.String("accountName", req.Name),
		zap.String("location", req.Location),
		zap.String("apiKind", req.APIKind.String()),
	)

	return OperationFunc(func(ctx context.Context) error {
		if _, err := poller.PollUntilDone(ctx, nil); err != nil {
			return newProviderError(fmt.Sprintf("provisioning of account %q failed", req.Name), err)
		}
		return nil
	}), nil
}

// AccountExists probes the account; a 404 from Azure is a clean false, not
// an error.
func (p *AzureProvisioner) AccountExists(ctx context.Context, accountName string) (bool, error) {
	_, err := p.accounts.Get(ctx, p.resourceGroup, accountName, nil)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, newProviderError(fmt.Sprintf("lookup of account %q failed", accountName), err)
	}
	return true, nil
}

// DeleteAccount fails fast when the account is unknown, otherwise submits the
// delete and returns an Operation tracking its completion.
func (p *AzureProvisioner) DeleteAccount(ctx context.Context, accountName string) (Operation, error) {
	exists, err := p.AccountExists(ctx, accountName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: account %q does not exist", domain.ErrNotFound, accountName)
	}

	poller, err := p.accounts.BeginDelete(ctx, p.resourceGroup, accountName, nil)
	if err != nil {
		return nil, newProviderError(fmt.Sprintf("delete of account %q was rejected", accountName), err)
	}

	p.logger.Info("account delete accepted", zap.String("accountName", accountName))

	return OperationFunc(func(ctx context.Context) error {
		if _, err := poller.PollUntilDone(ctx, nil); err != nil {
			return newProviderError(fmt.Sprintf("deletion of account %q failed", accountName), err)
		}
		return nil
	}), nil
}

func mapAccountKind(kind domain.APIKind) armcosmos.DatabaseAccountKind {
	if kind == domain.APIKindMongo {
		return armcosmos.DatabaseAccountKindMongoDB
	}
	return armcosmos.DatabaseAccountKindGlobalDocumentDB
}

func apiProperties(kind domain.APIKind) *armcosmos.APIProperties {
	if kind != domain.APIKindMongo {
		return nil
	}
	return &armcosmos.APIProperties{
		ServerVersion: to.Ptr(armcosmos.ServerVersionThree2),
	}
}
