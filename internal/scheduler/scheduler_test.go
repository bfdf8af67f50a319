package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VNIndexAgent/internal/marks"
)

var hcm = time.FixedZone("ICT", 7*3600)

func triggers() []Trigger {
	return []Trigger{
		{Name: "morning", MarkKey: MorningKey, Hour: 9, Minute: 0, Request: "sáng"},
		{Name: "evening", MarkKey: EveningKey, Hour: 17, Minute: 0, Request: "chiều"},
	}
}

func at(day, hour, min, sec int) time.Time {
	return time.Date(2024, 5, day, hour, min, sec, 0, hcm)
}

func names(ts []Trigger) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name
	}
	return out
}

func TestDue_OncePerDay(t *testing.T) {
	c := NewController(marks.NewMemoryStore(), triggers(), zerolog.Nop())

	fired := 0
	for sec := 0; sec < 60; sec += 2 {
		fired += len(c.Due(at(6, 9, 0, sec)))
	}
	assert.Equal(t, 1, fired)
	assert.Equal(t, FiredToday, c.State(triggers()[0], at(6, 12, 0, 0)))
	assert.Equal(t, PendingToday, c.State(triggers()[1], at(6, 12, 0, 0)))

	assert.Equal(t, PendingToday, c.State(triggers()[0], at(7, 0, 0, 1)))
	assert.Equal(t, []string{"morning"}, names(c.Due(at(7, 9, 0, 0))))
}

func TestDue_ExactMinuteOnly(t *testing.T) {
	c := NewController(marks.NewMemoryStore(), triggers(), zerolog.Nop())

	assert.Empty(t, c.Due(at(6, 8, 59, 58)))
	assert.Empty(t, c.Due(at(6, 9, 1, 0)))
	assert.Empty(t, c.Due(at(6, 10, 0, 0)))
	assert.Equal(t, []string{"evening"}, names(c.Due(at(6, 17, 0, 30))))
}

func TestDue_SurvivesRestart(t *testing.T) {
	store := marks.NewMemoryStore()
	first := NewController(store, triggers(), zerolog.Nop())
	require.Len(t, first.Due(at(6, 9, 0, 0)), 1)

	v, ok, _ := store.Get(MorningKey)
	assert.True(t, ok)
	assert.Equal(t, "2024-05-06", v)

	restarted := NewController(store, triggers(), zerolog.Nop())
	assert.Empty(t, restarted.Due(at(6, 9, 0, 40)))
	assert.Equal(t, FiredToday, restarted.State(triggers()[0], at(6, 9, 0, 40)))
}

type flakyStore struct {
	getErr error
	setErr error
	marks.Store
}

func (f flakyStore) Get(key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.Store.Get(key)
}

func (f flakyStore) Set(key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(key, value)
}

func TestDue_FailingWriteStillFiresOnce(t *testing.T) {
	store := flakyStore{setErr: errors.New("disk full"), Store: marks.NewMemoryStore()}
	c := NewController(store, triggers(), zerolog.Nop())

	assert.Len(t, c.Due(at(6, 9, 0, 0)), 1)
	assert.Empty(t, c.Due(at(6, 9, 0, 2)))
}

func TestDue_FailingReadSkips(t *testing.T) {
	store := flakyStore{getErr: errors.New("locked"), Store: marks.NewMemoryStore()}
	c := NewController(store, triggers(), zerolog.Nop())

	assert.Empty(t, c.Due(at(6, 9, 0, 0)))
}

type fakeHooks struct {
	mu        sync.Mutex
	briefings []string
	days      []string
	ticks     int
	refreshes int
	reviews   int
}

func (f *fakeHooks) Briefing(_ context.Context, t Trigger, day string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.briefings = append(f.briefings, t.Name)
	f.days = append(f.days, day)
}

func (f *fakeHooks) SimulateTick() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticks++
}

func (f *fakeHooks) RefreshPrices(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
}

func (f *fakeHooks) Review(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews++
}

func TestTick_FiresBriefingAndAlwaysSimulates(t *testing.T) {
	hooks := &fakeHooks{}
	ctl := NewController(marks.NewMemoryStore(), triggers(), zerolog.Nop())
	s := NewScheduler(context.Background(), ctl, hooks, hcm, zerolog.Nop())

	s.Tick(at(6, 9, 0, 0))
	s.Tick(at(6, 9, 0, 2))
	s.Tick(at(6, 9, 0, 4))
	s.Wait()

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	assert.Equal(t, []string{"morning"}, hooks.briefings)
	assert.Equal(t, []string{"2024-05-06"}, hooks.days)
	assert.Equal(t, 3, hooks.ticks)
}

func TestTick_UsesConfiguredZone(t *testing.T) {
	hooks := &fakeHooks{}
	ctl := NewController(marks.NewMemoryStore(), triggers(), zerolog.Nop())
	s := NewScheduler(context.Background(), ctl, hooks, hcm, zerolog.Nop())

	s.Tick(time.Date(2024, 5, 6, 2, 0, 0, 0, time.UTC))
	s.Wait()

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	assert.Equal(t, []string{"morning"}, hooks.briefings)
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), NewController(marks.NewMemoryStore(), nil, zerolog.Nop()), &fakeHooks{}, hcm, zerolog.Nop())

	require.NoError(t, s.RegisterAll(2*time.Second, "0 */15 9-15 * * 1-5", "0 0 8 * * 1"))
	assert.Len(t, s.Cron.Entries(), 3)
}

func TestRegisterAll_OptionalJobs(t *testing.T) {
	s := NewScheduler(context.Background(), NewController(marks.NewMemoryStore(), nil, zerolog.Nop()), &fakeHooks{}, hcm, zerolog.Nop())

	require.NoError(t, s.RegisterAll(2*time.Second, "", ""))
	assert.Len(t, s.Cron.Entries(), 1)
}

func TestRegisterAll_BadCron(t *testing.T) {
	s := NewScheduler(context.Background(), NewController(marks.NewMemoryStore(), nil, zerolog.Nop()), &fakeHooks{}, hcm, zerolog.Nop())
	assert.Error(t, s.RegisterAll(2*time.Second, "not a cron", ""))
}
