package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/models"
)

// contractServer — список контрактов, меняемый между опросами.
type contractServer struct {
	mu   sync.Mutex
	syms []string
}

func (s *contractServer) set(syms ...string) {
	s.mu.Lock()
	s.syms = syms
	s.mu.Unlock()
}

func (s *contractServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		fmt.Fprint(w, `{"success":true,"code":0,"data":[`)
		for i, sym := range s.syms {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"symbol":%q,"settleCoin":"USDT","state":0}`, sym)
		}
		fmt.Fprint(w, `]}`)
	}
}

func TestDiscoveryFirstRefreshSeedsSilently(t *testing.T) {
	cs := &contractServer{}
	cs.set("BTC_USDT", "ETH_USDT")
	srv := httptest.NewServer(cs.handler())
	defer srv.Close()

	alerts := make(chan models.AlertEvent, 8)
	d := NewDiscovery(testClient(srv), alerts)

	added, err := d.Refresh(context.Background())
	require.NoError(t, err)
	assert.Nil(t, added, "first refresh must not report listings")
	assert.Empty(t, alerts)
	assert.Equal(t, []string{"BTC_USDT", "ETH_USDT"}, d.Symbols())
}

func TestDiscoveryReportsNewListings(t *testing.T) {
	cs := &contractServer{}
	cs.set("BTC_USDT")
	srv := httptest.NewServer(cs.handler())
	defer srv.Close()

	alerts := make(chan models.AlertEvent, 8)
	d := NewDiscovery(testClient(srv), alerts)

	_, err := d.Refresh(context.Background())
	require.NoError(t, err)

	cs.set("BTC_USDT", "NEW_USDT")
	added, err := d.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"NEW_USDT"}, added)

	require.Len(t, alerts, 1)
	ev := <-alerts
	listing, ok := ev.(models.NewListingEvent)
	require.True(t, ok, "event type %T", ev)
	assert.Equal(t, "NEW_USDT", listing.Symbol)

	// вселенная только растёт
	assert.Equal(t, []string{"BTC_USDT", "NEW_USDT"}, d.Symbols())
}

func TestDiscoveryDelistedSymbolStays(t *testing.T) {
	cs := &contractServer{}
	cs.set("BTC_USDT", "GONE_USDT")
	srv := httptest.NewServer(cs.handler())
	defer srv.Close()

	alerts := make(chan models.AlertEvent, 8)
	d := NewDiscovery(testClient(srv), alerts)

	_, err := d.Refresh(context.Background())
	require.NoError(t, err)

	cs.set("BTC_USDT")
	added, err := d.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.Equal(t, []string{"BTC_USDT", "GONE_USDT"}, d.Symbols())
	assert.Empty(t, alerts)
}
