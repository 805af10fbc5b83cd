package service_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/sweet_shop/internal/hash"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/notify"
	"github.com/Skotchmaster/sweet_shop/internal/policy"
	"github.com/Skotchmaster/sweet_shop/internal/repo"
	"github.com/Skotchmaster/sweet_shop/internal/service"
	"github.com/Skotchmaster/sweet_shop/internal/testutil"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
	"github.com/Skotchmaster/sweet_shop/pkg/db"
	"github.com/Skotchmaster/sweet_shop/pkg/tokens"
)

func TestMain(m *testing.M) {
	hash.Cost = bcrypt.MinCost
	os.Exit(m.Run())
}

var (
	admin    = policy.Actor{ID: 1, Active: true, Staff: true, Admin: true}
	staff    = policy.Actor{ID: 2, Active: true, Staff: true}
	customer = policy.Actor{ID: 3, Active: true}
	nobody   = policy.Anonymous()
)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Emit(events ...notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *recorder) types() []notify.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	repo     *repo.GormRepo
	events   *recorder
	catalog  *service.CatalogService
	auth     *service.AuthService
	accounts *service.AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	r := repo.New(testutil.NewDB(t))
	rec := &recorder{}
	return &fixture{
		repo:   r,
		events: rec,
		catalog: &service.CatalogService{
			Repo:   r,
			Events: rec,
			Retry:  db.RetryOptions{MaxRetries: 3, Backoff: time.Millisecond},
		},
		auth: &service.AuthService{
			Repo:   r,
			Events: rec,
			Tokens: &tokens.Issuer{
				AccessSecret:  []byte("test-access-secret"),
				RefreshSecret: []byte("test-refresh-secret"),
			},
		},
		accounts: &service.AccountService{Repo: r, Events: rec},
	}
}

func sweetReq(name string, cat models.Category, price string, qty int) transport.SweetRequest {
	return transport.SweetRequest{
		Name:     name,
		Category: string(cat),
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	}
}

func (f *fixture) createSweet(t *testing.T, name string, price string, qty int) *models.Sweet {
	t.Helper()
	s, err := f.catalog.Create(context.Background(), admin, sweetReq(name, models.CategoryCandy, price, qty))
	require.NoError(t, err)
	return s
}
