package main

import (
	"bytes"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

const fixturePath = "../../../internal/fixture/testdata/athens.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQuoteCommand(t *testing.T) {
	out, err := run(t, "quote", "--snapshot", fixturePath, "--offer", "offer-athens", "--rate", "rate-athens-adult", "--qty", "2", "--channel", "b2b")
	require.NoError(t, err)

	var resp struct {
		GrossRate  string `json:"grossRate"`
		TotalGross string `json:"totalGross"`
		Currency   string `json:"currency"`
		Breakdown  struct {
			Component string `json:"component"`
		} `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "120", resp.GrossRate)
	require.Equal(t, "240", resp.TotalGross)
	require.Equal(t, "USD", resp.Currency)
	require.Equal(t, "agent_commission", resp.Breakdown.Component)
}

func TestQuoteCommandUnknownOffer(t *testing.T) {
	_, err := run(t, "quote", "--snapshot", fixturePath, "--offer", "nope", "--rate", "rate-athens-adult")
	require.Error(t, err)
	require.Contains(t, err.Error(), "nope")
}

func TestPoolCommand(t *testing.T) {
	out, err := run(t, "pool", "--snapshot", fixturePath, "pool-athens")
	require.NoError(t, err)
	var summary struct {
		PoolID                string `json:"poolId"`
		TotalCost             string `json:"totalCost"`
		UtilizationPercentage string `json:"utilizationPercentage"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.Equal(t, "pool-athens", summary.PoolID)
	require.Equal(t, "15", summary.TotalCost)
	require.Equal(t, "40", summary.UtilizationPercentage)

	out, err = run(t, "pool", "--snapshot", fixturePath, "--all")
	require.NoError(t, err)
	var all []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	require.Len(t, all, 1)

	_, err = run(t, "pool", "--snapshot", fixturePath)
	require.EqualError(t, err, "pool id required unless --all is set")
}

func TestCheapestCommand(t *testing.T) {
	out, err := run(t, "cheapest", "--snapshot", fixturePath, "pool-athens")
	require.NoError(t, err)
	require.Contains(t, out, `"supplierId": "sup-olive"`)

	_, err = run(t, "cheapest", "--snapshot", fixturePath, "pool-missing")
	require.EqualError(t, err, `pool "pool-missing" has no allocations`)
}

func TestSnapshotFlagRequired(t *testing.T) {
	_, err := run(t, "cheapest", "pool-athens")
	require.Error(t, err)
}
