package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VNIndexAgent/internal/model"
)

func TestHandleCommand_Prices(t *testing.T) {
	f := newFixture(t)
	out := f.app.HandleCommand(context.Background(), "/prices@vnindex_bot")
	assert.Contains(t, out, "VN-INDEX: 1")
	assert.Contains(t, out, "FPT: 135")
}

func TestHandleCommand_Portfolio(t *testing.T) {
	out := newFixture(t).app.HandleCommand(context.Background(), "/portfolio")
	assert.Contains(t, out, "Công nghệ")
	assert.Contains(t, out, "Thép")
}

func TestHandleCommand_Alert(t *testing.T) {
	f := newFixture(t)

	out := f.app.HandleCommand(context.Background(), "/alert fpt above 140,000")
	assert.Contains(t, out, "FPT > 140")

	alerts := f.app.Snapshot().Alerts
	require.Len(t, alerts, 1)
	assert.Equal(t, model.Above, alerts[0].Condition)
	assert.Equal(t, 140000.0, alerts[0].Threshold)

	assert.Contains(t, f.app.HandleCommand(context.Background(), "/alert FPT"), "Cú pháp")
	assert.Contains(t, f.app.HandleCommand(context.Background(), "/alert FPT SIDEWAYS 1"), "❌")
	assert.Len(t, f.app.Snapshot().Alerts, 1)
}

func TestHandleCommand_Quick(t *testing.T) {
	f := newFixture(t)
	out := f.app.HandleCommand(context.Background(), "/quick hpg")
	assert.Contains(t, out, "HPG > 30")
	assert.Contains(t, out, "HPG < 28")

	assert.Contains(t, f.app.HandleCommand(context.Background(), "/quick XYZ"), "❌")
}

func TestHandleCommand_ChatAndResearch(t *testing.T) {
	f := newFixture(t)

	out := f.app.HandleCommand(context.Background(), "VN-Index hôm nay?")
	assert.Contains(t, out, "Khuyến nghị: MUA HPG")
	assert.Contains(t, out, "cafef.vn")

	f.app.HandleCommand(context.Background(), "/research VCB có nên mua?")
	assert.Equal(t, "VCB", f.app.Snapshot().ActiveSymbol)
}

func TestHandleCommand_ReviewRepliesNothing(t *testing.T) {
	f := newFixture(t)
	assert.Empty(t, f.app.HandleCommand(context.Background(), "/review"))
	require.Len(t, f.rec.briefings, 1)
}

func TestHandleCommand_Unknown(t *testing.T) {
	out := newFixture(t).app.HandleCommand(context.Background(), "/dance")
	assert.Contains(t, out, "/help")
}
