package provisioner

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cosmos/armcosmos/v3"
	"github.com/kursadbilgin/cosmos-provisioner/internal/domain"
)

func TestMapAccountKind(t *testing.T) {
	t.Parallel()

	if got := mapAccountKind(domain.APIKindSQL); got != armcosmos.DatabaseAccountKindGlobalDocumentDB {
		t.Fatalf("mapAccountKind(sql) = %s, want GlobalDocumentDB", got)
	}
	if got := mapAccountKind(domain.APIKindMongo); got != armcosmos.DatabaseAccountKindMongoDB {
		t.Fatalf("mapAccountKind(mongo) = %s, want MongoDB", got)
	}
}

func TestAPIProperties(t *testing.T) {
	t.Parallel()

	if props := apiProperties(domain.APIKindSQL); props != nil {
		t.Fatalf("apiProperties(sql) = %v, want nil", props)
	}

	props := apiProperties(domain.APIKindMongo)
	if props == nil || props.ServerVersion == nil {
		t.Fatal("apiProperties(mongo) should carry a server version")
	}
	if *props.ServerVersion != armcosmos.ServerVersionThree2 {
		t.Fatalf("server version = %s, want 3.2", *props.ServerVersion)
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	notFound := &azcore.ResponseError{StatusCode: http.StatusNotFound, ErrorCode: "NotFound"}
	if !isNotFound(notFound) {
		t.Fatal("404 response error should be not-found")
	}
	if isNotFound(&azcore.ResponseError{StatusCode: http.StatusForbidden}) {
		t.Fatal("403 should not be not-found")
	}
	if isNotFound(context.DeadlineExceeded) {
		t.Fatal("plain errors should not be not-found")
	}
}

func TestProviderErrorClassification(t *testing.T) {
	t.Parallel()

	cause := &azcore.ResponseError{StatusCode: http.StatusConflict, ErrorCode: "Conflict"}
	err := newProviderError("create of account \"acc\" was rejected", cause)

	if err.StatusCode != http.StatusConflict {
		t.Fatalf("StatusCode = %d, want 409", err.StatusCode)
	}
	if !strings.Contains(err.Error(), "azure error") {
		t.Fatalf("Error() = %q, want azure error prefix", err.Error())
	}
	if !strings.Contains(err.Error(), "Conflict") {
		t.Fatalf("Error() = %q, want Azure error code included", err.Error())
	}
	if !errors.Is(err, domain.ErrProvider) {
		t.Fatal("ProviderError should match domain.ErrProvider")
	}
	if !errors.As(err.Unwrap(), new(*azcore.ResponseError)) {
		t.Fatal("Unwrap should expose the Azure response error")
	}
}

func TestOperationFuncWait(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	op := OperationFunc(func(ctx context.Context) error { return sentinel })
	if err := op.Wait(context.Background()); !errors.Is(err, sentinel) {
		t.Fatalf("Wait() error = %v, want sentinel", err)
	}
}
