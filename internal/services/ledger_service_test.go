package services

import (
	"context"
	"errors"
	"testing"

	"github.com/flmarket/payouts/internal/models"
	"github.com/flmarket/payouts/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestLedgerService_GetBalance(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	principal := models.Principal{UserID: userID}

	t.Run("returns both buckets", func(t *testing.T) {
		walletMock := &storage.MockWalletStorage{
			GetWalletFunc: func(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
				if id != userID {
					t.Errorf("unexpected user id %v", id)
				}
				return &models.Wallet{
					UserID:    id,
					Available: decimal.NewFromInt(300),
					Pending:   decimal.NewFromInt(200),
				}, nil
			},
		}
		svc := NewLedgerService(&fakeTxRunner{}, walletMock, &fakeTransactionStorage{}, &captureNotifier{})

		balance, err := svc.GetBalance(ctx, principal)
		if err != nil {
			t.Fatalf("GetBalance() error = %v", err)
		}
		if balance.Available != 300 || balance.Pending != 200 {
			t.Errorf("balance = %+v, want {300 200}", balance)
		}
	})

	t.Run("wallet not found", func(t *testing.T) {
		svc := NewLedgerService(&fakeTxRunner{}, &storage.MockWalletStorage{}, &fakeTransactionStorage{}, &captureNotifier{})

		if _, err := svc.GetBalance(ctx, principal); !errors.Is(err, storage.ErrWalletNotFound) {
			t.Fatalf("expected ErrWalletNotFound, got %v", err)
		}
	})
}

func TestLedgerService_Credit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("forbidden for regular user", func(t *testing.T) {
		svc := NewLedgerService(&fakeTxRunner{}, &storage.MockWalletStorage{}, &fakeTransactionStorage{}, &captureNotifier{})

		err := svc.Credit(ctx, userPrincipal, userID, decimal.NewFromInt(100))
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("invalid amount", func(t *testing.T) {
		svc := NewLedgerService(&fakeTxRunner{}, &storage.MockWalletStorage{}, &fakeTransactionStorage{}, &captureNotifier{})

		err := svc.Credit(ctx, adminPrincipal, userID, decimal.Zero)
		if !errors.Is(err, ErrInvalidCreditAmount) {
			t.Fatalf("expected ErrInvalidCreditAmount, got %v", err)
		}
	})

	t.Run("credit writes journal record and emits event", func(t *testing.T) {
		wallet := newFakeWalletStorage(0)
		journal := &fakeTransactionStorage{}
		notifier := &captureNotifier{}
		svc := NewLedgerService(&fakeTxRunner{}, wallet, journal, notifier)

		if err := svc.Credit(ctx, adminPrincipal, userID, decimal.NewFromInt(150)); err != nil {
			t.Fatalf("Credit() error = %v", err)
		}

		available, _ := wallet.balances()
		mustEqual(t, available, 150, "available")

		records, _ := journal.GetByUserID(ctx, userID)
		if len(records) != 1 {
			t.Fatalf("journal records = %d, want 1", len(records))
		}
		if records[0].Type != models.TransactionTypeCredit {
			t.Errorf("record type = %s, want credit", records[0].Type)
		}

		if notifier.count() != 1 {
			t.Errorf("events emitted = %d, want 1", notifier.count())
		}
	})
}
