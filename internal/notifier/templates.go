package notifier

import (
	"fmt"
	"time"

	"github.com/kursadbilgin/cosmos-provisioner/internal/domain"
)

type nowFunc func() time.Time

func defaultNow() time.Time { return time.Now().UTC() }

func createSuccessMessage(req domain.AccountRequest, subscriptionID string, resourceGroup string, now time.Time) (string, string) {
	subject := fmt.Sprintf("✅ Cosmos DB Account Ready: %s", req.Name)
	body := fmt.Sprintf(`Your Azure Cosmos DB account has been successfully provisioned!

Account Details:
- Name: %s
- API Type: %s
- Location: %s
- Provisioning Time: %s

Next Steps:
1. Create databases and containers
2. Configure access policies
3. Connect using connection strings

Azure Portal Link: https://portal.azure.com/#resource/subscriptions/%s/resourceGroups/%s/providers/Microsoft.DocumentDB/databaseAccounts/%s
`,
		req.Name,
		req.APIKind,
		req.Location,
		now.Format("2006-01-02 15:04 UTC"),
		subscriptionID,
		resourceGroup,
		req.Name,
	)
	return subject, body
}

func createFailureMessage(accountName string, errorText string) (string, string) {
	subject := fmt.Sprintf("Provisioning failed for %s", accountName)
	body := fmt.Sprintf(`Cosmos DB account provisioning failed:

Account Name: %s
Error: %s

Required Action:
1. Check the Azure portal for resource status
2. Review account name availability
3. Ensure the selected location is available for your subscription
`, accountName, errorText)
	return subject, body
}

func deleteSuccessMessage(accountName string) (string, string) {
	subject := fmt.Sprintf("✅ Cosmos DB Account Deleted: %s", accountName)
	body := fmt.Sprintf("Your Azure Cosmos DB account %s has been successfully deleted.\n", accountName)
	return subject, body
}

func deleteFailureMessage(accountName string, errorText string) (string, string) {
	subject := fmt.Sprintf("❌ Cosmos DB Account Deletion Failed: %s", accountName)
	body := fmt.Sprintf("Failed to delete Cosmos DB account %s. Error: %s\n", accountName, errorText)
	return subject, body
}
