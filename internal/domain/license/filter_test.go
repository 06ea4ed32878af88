package license

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixture() []License {
	future := NewTimestamp(now.Add(48 * time.Hour))
	past := NewTimestamp(now.Add(-48 * time.Hour))
	return []License{
		{LicenseKey: "KEY-AAA-111", UserName: "Alice Smith", UserEmail: "alice@example.com", IsActive: true, ExpiresAt: future},
		{LicenseKey: "KEY-BBB-222", UserName: "Bob Jones", UserEmail: "bob@corp.io", IsActive: true, ExpiresAt: past},
		{LicenseKey: "KEY-CCC-333", UserName: "Carol", UserEmail: "carol@example.com", IsActive: false, ExpiresAt: future},
		{LicenseKey: "key-ddd-444", UserName: "Dave", UserEmail: "dave@corp.io", IsActive: true, ExpiresAt: future},
	}
}

func keys(ls []License) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.LicenseKey
	}
	return out
}

func intersect(a, b []License) []License {
	inB := make(map[string]bool, len(b))
	for _, l := range b {
		inB[l.LicenseKey] = true
	}
	var out []License
	for _, l := range a {
		if inB[l.LicenseKey] {
			out = append(out, l)
		}
	}
	return out
}

func TestFilter_SearchFields(t *testing.T) {
	list := fixture()
	assert.Equal(t, []string{"KEY-AAA-111"}, keys(Filter(list, "ALICE", StatusAll, now)))
	assert.Equal(t, []string{"KEY-BBB-222", "key-ddd-444"}, keys(Filter(list, "corp.io", StatusAll, now)))
	assert.Equal(t, []string{"KEY-CCC-333"}, keys(Filter(list, "ccc", StatusAll, now)))
	assert.Empty(t, Filter(list, "zzz", StatusAll, now))
}

func TestFilter_EmptySearchAndAll(t *testing.T) {
	list := fixture()
	assert.Equal(t, keys(list), keys(Filter(list, "", StatusAll, now)))
	assert.Equal(t, keys(FilterByStatus(list, StatusActive, now)), keys(Filter(list, "", StatusActive, now)))
	assert.Equal(t, keys(FilterBySearch(list, "key-")), keys(Filter(list, "key-", StatusAll, now)))
}

func TestFilter_IsIntersection(t *testing.T) {
	list := fixture()
	terms := []string{"", "a", "example", "KEY", "corp", "nobody"}
	statuses := []Status{StatusAll, StatusActive, StatusExpired, StatusRevoked}

	for _, term := range terms {
		for _, st := range statuses {
			want := intersect(FilterBySearch(list, term), FilterByStatus(list, st, now))
			assert.Equal(t, keys(want), keys(Filter(list, term, st, now)), "term=%q status=%s", term, st)
		}
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	list := fixture()
	got := Filter(list, "", StatusActive, now)
	assert.Equal(t, []string{"KEY-AAA-111", "key-ddd-444"}, keys(got))
}
