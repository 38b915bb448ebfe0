package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aware-eas/alertsim/sim"
)

func TestNew_ConstructsEachKnownPolicy(t *testing.T) {
	for _, name := range sim.PolicyNames() {
		p, err := New(name, 16)
		require.NoError(t, err)
		assert.NotNil(t, p)
		assert.Equal(t, 0, p.Size())
	}
}

func TestNew_RejectsNonPositiveCapacity(t *testing.T) {
	_, err := New(sim.PolicyLRU, 0)
	require.Error(t, err)
	var cfgErr *sim.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNew_RejectsUnknownPolicyName(t *testing.T) {
	_, err := New(sim.PolicyName("Mystery"), 10)
	require.Error(t, err)
}

// mkAlert builds a minimal alert for policy contract tests.
func mkAlert(id string, issuedAt, ttl int64) sim.Alert {
	return sim.Alert{
		ID: id, IssuedAt: issuedAt, TTLSec: ttl,
		Severity: sim.SeverityModerate, Urgency: sim.UrgencyExpected,
		RegionID: "region-000",
	}
}

func TestAllPolicies_PutThenGetRoundTrips(t *testing.T) {
	for _, name := range sim.PolicyNames() {
		t.Run(string(name), func(t *testing.T) {
			p, err := New(name, 8)
			require.NoError(t, err)

			a := mkAlert("alert-1", 0, 600)
			p.Put(a, 0)

			got, ok := p.Get("alert-1", 10)
			require.True(t, ok)
			assert.Equal(t, a.ID, got.ID)
			assert.True(t, p.Has("alert-1", 10))
		})
	}
}

func TestAllPolicies_GetAbsentReturnsFalse(t *testing.T) {
	for _, name := range sim.PolicyNames() {
		t.Run(string(name), func(t *testing.T) {
			p, err := New(name, 8)
			require.NoError(t, err)

			_, ok := p.Get("nope", 0)
			assert.False(t, ok)
			assert.False(t, p.Has("nope", 0))
		})
	}
}

func TestAllPolicies_NeverExceedCapacity(t *testing.T) {
	for _, name := range sim.PolicyNames() {
		t.Run(string(name), func(t *testing.T) {
			p, err := New(name, 4)
			require.NoError(t, err)

			for i := 0; i < 20; i++ {
				p.Put(mkAlert(string(rune('a'+i)), int64(i), 10000), int64(i))
			}
			assert.LessOrEqual(t, p.Size(), 4)
		})
	}
}

func TestAllPolicies_ExpiredEntriesAreEvictedOnRead(t *testing.T) {
	for _, name := range sim.PolicyNames() {
		t.Run(string(name), func(t *testing.T) {
			p, err := New(name, 8)
			require.NoError(t, err)

			a := mkAlert("expiring", 0, 10)
			p.Put(a, 0)
			assert.True(t, p.Has("expiring", 5))

			_, ok := p.Get("expiring", 20)
			assert.False(t, ok)
			assert.False(t, p.Has("expiring", 20))
		})
	}
}

func TestAllPolicies_EntriesExcludesExpired(t *testing.T) {
	for _, name := range sim.PolicyNames() {
		t.Run(string(name), func(t *testing.T) {
			p, err := New(name, 8)
			require.NoError(t, err)

			p.Put(mkAlert("fresh", 0, 1000), 0)
			p.Put(mkAlert("stale", 0, 5), 0)

			entries := p.Entries(100)
			ids := make(map[string]bool)
			for _, e := range entries {
				ids[e.ID] = true
			}
			assert.True(t, ids["fresh"])
			assert.False(t, ids["stale"])
		})
	}
}
