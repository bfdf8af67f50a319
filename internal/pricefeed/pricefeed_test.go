package pricefeed

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VNIndexAgent/internal/llm"
	"VNIndexAgent/internal/model"
)

func TestParsePrices_WellFormedAndCommaLines(t *testing.T) {
	got := ParsePrices("FPT: 135200\nVN-INDEX: 1254.30\nVCB: 92,100\nGARBAGE LINE\n")

	assert.Equal(t, model.PriceTable{
		"FPT":      135200,
		"VN-INDEX": 1254.30,
		"VCB":      92100,
	}, got)
}

func TestParsePrices_RejectsNonPositiveAndInvalid(t *testing.T) {
	got := ParsePrices("XYZ: -50\nABC: 0\nDEF: notanumber\n")
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestParsePrices_Cases(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.PriceTable
	}{
		{"empty input", "", model.PriceTable{}},
		{"lowercase symbol is uppercased", "fpt: 135000", model.PriceTable{"FPT": 135000}},
		{"loose spacing", "  HPG   :   29500  ", model.PriceTable{"HPG": 29500}},
		{"full-width colon", "VNM：68000", model.PriceTable{"VNM": 68000}},
		{"bullet and bold prefix", "- **MWG**: 45000", model.PriceTable{"MWG": 45000}},
		{"trailing unit", "TCB: 23500 VND", model.PriceTable{"TCB": 23500}},
		{"trailing sentence period", "VPB: 19000.", model.PriceTable{"VPB": 19000}},
		{"last write wins", "FPT: 1\nFPT: 2", model.PriceTable{"FPT": 2}},
		{"symbol too short", "AB: 100", model.PriceTable{}},
		{"symbol too long", "ABCDEFGHIJK: 100", model.PriceTable{}},
		{"two decimal points", "FPT: 1.2.3", model.PriceTable{}},
		{"no separator", "FPT 135000", model.PriceTable{}},
		{"exponent is not a price", "FPT: 1e5", model.PriceTable{}},
		{"decimal exponent is not a price", "VN-INDEX: 1.25e3", model.PriceTable{}},
		{"number glued to letters", "HPG: 29500VND", model.PriceTable{}},
		{"currency sign suffix", "FPT: 135000đ", model.PriceTable{"FPT": 135000}},
		{"one bad line does not poison others", "FPT: 0\nHPG: 29500", model.PriceTable{"HPG": 29500}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePrices(tt.raw))
		})
	}
}

func TestMerge_NeverDeletesAndGuardsJumps(t *testing.T) {
	current := model.PriceTable{"FPT": 135000, "HPG": 29500, "VN-INDEX": 1258.4}
	incoming := model.PriceTable{"FPT": 136000, "HPG": 2950000, "TCB": 23500}

	merged, accepted, rejected := Merge(current, incoming, 0.5)

	assert.Equal(t, model.PriceTable{"FPT": 136000, "HPG": 29500, "VN-INDEX": 1258.4, "TCB": 23500}, merged)
	assert.Equal(t, model.PriceTable{"FPT": 136000, "TCB": 23500}, accepted)
	require.Len(t, rejected, 1)
	assert.Equal(t, "HPG", rejected[0].Symbol)
	assert.Equal(t, 29500.0, current["HPG"], "input table must not be mutated")
}

func TestMerge_GuardDisabled(t *testing.T) {
	merged, _, rejected := Merge(model.PriceTable{"HPG": 29500}, model.PriceTable{"HPG": 2950000}, 0)
	assert.Empty(t, rejected)
	assert.Equal(t, 2950000.0, merged["HPG"])
}

func TestUnique(t *testing.T) {
	got := Unique([]string{"VN-INDEX", "fpt", "FPT", "", " hpg ", "VN-INDEX"})
	assert.Equal(t, []string{"VN-INDEX", "FPT", "HPG"}, got)
}

func TestFetcher_ParsesReplyWithSearchEnabled(t *testing.T) {
	var gotPrompt string
	var gotOpts llm.Options
	client := llm.ClientFunc(func(_ context.Context, prompt, _ string, opts llm.Options) (llm.Result, error) {
		gotPrompt, gotOpts = prompt, opts
		return llm.Result{Text: "FPT: 135200\nVCB: 92100"}, nil
	})

	f := NewFetcher(client, 0.1, zerolog.Nop())
	got := f.Fetch(context.Background(), []string{"FPT", "vcb", "FPT"})

	assert.Equal(t, model.PriceTable{"FPT": 135200, "VCB": 92100}, got)
	assert.Contains(t, gotPrompt, "FPT, VCB.")
	assert.True(t, gotOpts.Search)
	assert.InDelta(t, 0.1, gotOpts.Temperature, 1e-6)
}

func TestFetcher_ErrorYieldsEmptyTable(t *testing.T) {
	client := llm.ClientFunc(func(context.Context, string, string, llm.Options) (llm.Result, error) {
		return llm.Result{}, errors.New("quota exceeded")
	})

	got := NewFetcher(client, 0.1, zerolog.Nop()).Fetch(context.Background(), []string{"FPT"})
	assert.Empty(t, got)
}

func TestFetcher_NoSymbolsSkipsCall(t *testing.T) {
	called := false
	client := llm.ClientFunc(func(context.Context, string, string, llm.Options) (llm.Result, error) {
		called = true
		return llm.Result{}, nil
	})

	got := NewFetcher(client, 0.1, zerolog.Nop()).Fetch(context.Background(), nil)
	assert.Empty(t, got)
	assert.False(t, called)
}

func TestSimulator_StaysWithinAmplitude(t *testing.T) {
	sim := NewSimulator(0.001, rand.New(rand.NewPCG(1, 2)))
	prices := model.PriceTable{"FPT": 135000, "VN-INDEX": 1258.4}

	for i := 0; i < 500; i++ {
		next := sim.Step(prices)
		require.Len(t, next, 2)
		for sym, p := range next {
			assert.InEpsilon(t, prices[sym], p, 0.0005+1e-12)
		}
	}
	assert.Equal(t, 135000.0, prices["FPT"], "input table must not be mutated")
}

func TestSimulator_ZeroAmplitudeIsIdentity(t *testing.T) {
	sim := NewSimulator(0, nil)
	assert.Equal(t, model.PriceTable{"FPT": 135000}, sim.Step(model.PriceTable{"FPT": 135000}))
}
