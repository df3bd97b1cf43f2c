package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phoolcraft/phool-backend/internal/orders"
	"github.com/phoolcraft/phool-backend/pkg/config"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	"github.com/phoolcraft/phool-backend/pkg/localstore"
)

func sampleOrder() models.Order {
	return models.Order{
		OrderID:   "PHL-TEST-ABCD",
		Name:      "Sana",
		Email:     "sana@example.com",
		OrderType: enums.OrderTypeRegular,
		Status:    enums.OrderStatusUnderProcess,
		Items: []models.OrderItem{
			{ID: 1, Name: "Rose Bouquet", Price: 35, Quantity: 2},
			{ID: 4, Name: "Eid Card", Price: 8, Quantity: 1, CustomText: "Eid Mubarak"},
		},
		Subtotal: 78,
		Total:    78,
	}
}

func waitAll(t *testing.T, n *Notifier) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, n.Wait(ctx))
}

func TestConfirmationParams(t *testing.T) {
	params := ConfirmationParams(sampleOrder())
	assert.Equal(t, "PHL-TEST-ABCD", params["order_id"])
	assert.Equal(t, "sana@example.com", params["to_email"])
	assert.Equal(t, "Rose Bouquet x2 (PKR 35)\nEid Card x1 (PKR 8) \"Eid Mubarak\"", params["products"])
	assert.Equal(t, "78", params["total"])
}

func TestEmailJSDeliversPayload(t *testing.T) {
	var got emailJSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	client := NewEmailJSClient(config.EmailJSConfig{
		Endpoint:   srv.URL,
		ServiceID:  "service_phool",
		TemplateID: "template_order",
		PublicKey:  "pk_123",
	}, srv.Client())
	require.NotNil(t, client)

	n := NewNotifier(Params{Email: client})
	n.OrderPlaced(context.Background(), sampleOrder(), orders.BackupEntry{})
	waitAll(t, n)

	assert.Equal(t, "service_phool", got.ServiceID)
	assert.Equal(t, "template_order", got.TemplateID)
	assert.Equal(t, "pk_123", got.UserID)
	assert.Equal(t, "Sana", got.TemplateParams["to_name"])
}

func TestDisabledClientsAreNil(t *testing.T) {
	assert.Nil(t, NewEmailJSClient(config.EmailJSConfig{}, nil))
	assert.Nil(t, NewSheetsClient(config.SheetsConfig{ScriptURL: "https://script.google.com/macros/s/YOUR_SCRIPT_ID/exec"}, nil))

	backup := orders.NewBackupLog(localstore.NewMemory(), "", nil)
	n := NewNotifier(Params{
		Email:  NewEmailJSClient(config.EmailJSConfig{}, nil),
		Sheets: NewSheetsClient(config.SheetsConfig{}, nil),
		Backup: backup,
	})
	n.OrderPlaced(context.Background(), sampleOrder(), orders.BackupEntry{OrderID: "PHL-TEST-ABCD"})
	waitAll(t, n)
	assert.Empty(t, listBackups(t, backup))
}

func TestServerErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	backup := orders.NewBackupLog(localstore.NewMemory(), "", nil)
	n := NewNotifier(Params{
		Sheets: NewSheetsClient(config.SheetsConfig{ScriptURL: srv.URL}, srv.Client()),
		Backup: backup,
	})
	n.OrderPlaced(context.Background(), sampleOrder(), orders.BackupEntry{OrderID: "PHL-TEST-ABCD"})
	waitAll(t, n)

	assert.Equal(t, int32(2), calls.Load())
	assert.Empty(t, listBackups(t, backup))
}

func TestSheetsFailureWritesBackup(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	backup := orders.NewBackupLog(localstore.NewMemory(), "", nil)
	n := NewNotifier(Params{
		Sheets: NewSheetsClient(config.SheetsConfig{ScriptURL: srv.URL}, srv.Client()),
		Backup: backup,
	})
	n.OrderPlaced(context.Background(), sampleOrder(), orders.EntryFromOrder(sampleOrder(), time.Now()))
	waitAll(t, n)

	assert.Equal(t, int32(1), calls.Load())
	entries := listBackups(t, backup)
	require.Len(t, entries, 1)
	assert.Equal(t, SheetsFailureError, entries[0].Error)
	assert.Equal(t, "PHL-TEST-ABCD", entries[0].OrderID)
}

func TestCancelledRequestContextDoesNotAbortDelivery(t *testing.T) {
	delivered := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivered <- struct{}{}
	}))
	defer srv.Close()

	n := NewNotifier(Params{Sheets: NewSheetsClient(config.SheetsConfig{ScriptURL: srv.URL}, srv.Client())})
	ctx, cancel := context.WithCancel(context.Background())
	n.OrderPlaced(ctx, sampleOrder(), orders.BackupEntry{})
	cancel()
	waitAll(t, n)

	select {
	case <-delivered:
	default:
		t.Fatal("expected the row to be delivered")
	}
}

func listBackups(t *testing.T, b *orders.BackupLog) []orders.BackupEntry {
	t.Helper()
	entries, err := b.List(context.Background())
	require.NoError(t, err)
	return entries
}
