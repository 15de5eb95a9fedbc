package directory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hrconnect/hr-directory/internal/catalog"
	"github.com/hrconnect/hr-directory/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestController(t *testing.T, backend *fakeBackend, debounce time.Duration) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	n := 0
	c := New(Config{
		Backend:        backend,
		Catalog:        catalog.Default(),
		Navigator:      rec,
		Notifier:       rec,
		SearchDebounce: debounce,
		FetchTimeout:   time.Second,
		NewKey: func() string {
			n++
			return fmt.Sprintf("key-%d", n)
		},
	})
	t.Cleanup(c.Close)
	return c, rec
}

func waitIdle(t *testing.T, c *Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
}

func result(names ...string) *models.ListResult {
	res := &models.ListResult{TotalPages: 1}
	for _, n := range names {
		res.Data = append(res.Data, models.ContactRecord{ID: n, Name: n})
	}
	return res
}

func rowNames(v View) []string {
	names := make([]string, 0, len(v.Rows))
	for _, r := range v.Rows {
		names = append(names, r.Record.Name)
	}
	return names
}

func TestController_LoadDefaultState(t *testing.T) {
	backend := &fakeBackend{}
	c, rec := newTestController(t, backend, 0)

	c.Load("")
	waitIdle(t, c)

	assert.Equal(t, []models.ListParams{{Page: 1}}, backend.listCalls())
	assert.Equal(t, []string{""}, rec.URLs())
	v := c.View()
	assert.Equal(t, "", v.URL)
	assert.False(t, v.Loading)
	assert.Equal(t, models.DefaultSearchState(), v.State)
}

func TestController_LoadRestoresURLState(t *testing.T) {
	backend := &fakeBackend{}
	c, rec := newTestController(t, backend, 0)

	c.Load("?query=jo&role=hr&location=pune&page=3")
	waitIdle(t, c)

	assert.Equal(t, []models.ListParams{{SearchQuery: "jo", Role: "HR", Location: "pune", Page: 3}}, backend.listCalls())
	assert.Equal(t, []string{"query=jo&role=HR&location=pune&page=3"}, rec.URLs())
}

func TestController_RapidTypingFetchesOnce(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newTestController(t, backend, 40*time.Millisecond)

	c.SetQuery("a")
	c.SetQuery("ab")
	c.SetQuery("abc")

	v := c.View()
	assert.Equal(t, "abc", v.State.Query, "query text updates immediately")
	assert.True(t, v.Loading)

	waitIdle(t, c)

	assert.Equal(t, []models.ListParams{{SearchQuery: "abc", Page: 1}}, backend.listCalls())
}

func TestController_SetQuery(t *testing.T) {
	backend := &fakeBackend{}
	c, rec := newTestController(t, backend, time.Millisecond)

	c.SetQuery("john")
	waitIdle(t, c)

	assert.Equal(t, []models.ListParams{{SearchQuery: "john", Page: 1}}, backend.listCalls())
	assert.Equal(t, []string{"query=john"}, rec.URLs())
	assert.Equal(t, "query=john", c.View().URL)
}

func TestController_SetQueryKeepsFiltersAndResetsPage(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newTestController(t, backend, time.Millisecond)

	c.Load("role=CTO&location=remote&page=4")
	waitIdle(t, c)
	c.SetQuery("ann")
	waitIdle(t, c)

	calls := backend.listCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, models.ListParams{SearchQuery: "ann", Role: "CTO", Location: "remote", Page: 1}, calls[1])
}

func TestController_FiltersAndPaging(t *testing.T) {
	backend := &fakeBackend{}
	c, rec := newTestController(t, backend, 0)

	c.SetRole("recruiter")
	waitIdle(t, c)
	c.SetLocation("pune")
	waitIdle(t, c)
	c.SetPage(2)
	waitIdle(t, c)
	c.SetRole("any")
	waitIdle(t, c)
	c.SetLocation("")
	waitIdle(t, c)

	assert.Equal(t, []models.ListParams{
		{Role: "RECRUITER", Page: 1},
		{Role: "RECRUITER", Location: "pune", Page: 1},
		{Role: "RECRUITER", Location: "pune", Page: 2},
		{Location: "pune", Page: 1},
		{Page: 1},
	}, backend.listCalls())
	assert.Equal(t, []string{
		"role=RECRUITER",
		"role=RECRUITER&location=pune",
		"role=RECRUITER&location=pune&page=2",
		"location=pune",
		"",
	}, rec.URLs())
}

func TestController_ClearKeepsFilters(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newTestController(t, backend, 0)

	c.Load("query=bob&role=HR&page=3")
	waitIdle(t, c)
	c.Clear()
	waitIdle(t, c)

	calls := backend.listCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, models.ListParams{Role: "HR", Page: 1}, calls[1])
	assert.Equal(t, "role=HR", c.View().URL)
}

func TestController_ImmediateOperationCancelsPendingSearch(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newTestController(t, backend, 50*time.Millisecond)

	c.SetQuery("abc")
	c.SetRole("HR")
	waitIdle(t, c)

	assert.Equal(t, []models.ListParams{{SearchQuery: "abc", Role: "HR", Page: 1}}, backend.listCalls())
}

func TestController_AppliesResult(t *testing.T) {
	backend := &fakeBackend{
		listFn: func(context.Context, int, models.ListParams) (*models.ListResult, error) {
			res := result("ann", "bob")
			res.TotalPages = 7
			return res, nil
		},
	}
	c, _ := newTestController(t, backend, 0)

	c.Load("")
	waitIdle(t, c)

	v := c.View()
	assert.Equal(t, []string{"ann", "bob"}, rowNames(v))
	assert.Equal(t, 7, v.State.TotalPages)
	assert.Equal(t, "ann", v.Rows[0].Key)
}

func TestController_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	firstCtxErr := make(chan error, 1)
	backend := &fakeBackend{
		listFn: func(ctx context.Context, call int, _ models.ListParams) (*models.ListResult, error) {
			if call == 0 {
				<-release
				firstCtxErr <- ctx.Err()
				return result("stale"), nil
			}
			return result("fresh"), nil
		},
	}
	c, _ := newTestController(t, backend, 0)

	c.SetRole("HR")
	c.SetLocation("pune")

	assert.Eventually(t, func() bool {
		return len(c.View().Rows) == 1 && c.View().Rows[0].Record.Name == "fresh"
	}, time.Second, 5*time.Millisecond)

	close(release)
	waitIdle(t, c)

	assert.ErrorIs(t, <-firstCtxErr, context.Canceled)
	v := c.View()
	assert.Equal(t, []string{"fresh"}, rowNames(v))
	assert.False(t, v.Loading)
}

func TestController_FetchErrorKeepsRows(t *testing.T) {
	backend := &fakeBackend{
		listFn: func(_ context.Context, call int, _ models.ListParams) (*models.ListResult, error) {
			if call == 0 {
				return result("ann"), nil
			}
			return nil, errors.New("Network Error")
		},
	}
	c, rec := newTestController(t, backend, 0)

	c.Load("")
	waitIdle(t, c)
	c.SetPage(2)
	waitIdle(t, c)

	v := c.View()
	assert.Equal(t, []string{"ann"}, rowNames(v))
	assert.False(t, v.Loading)
	assert.Equal(t, 2, v.State.Page)
	assert.Equal(t, []models.Notification{{Level: models.NotificationError, Message: "Network Error"}}, rec.Notifications())
}

func TestController_AddContactSuccess(t *testing.T) {
	backend := &fakeBackend{}
	c, rec := newTestController(t, backend, 0)

	newRec := models.ContactRecord{Name: "Asha", ContactNumber: "9876543210", CompanyName: "Acme", Role: "HR", Location: "pune"}
	require.NoError(t, c.AddContact(context.Background(), newRec))

	v := c.View()
	require.Len(t, v.Rows, 1)
	assert.Equal(t, newRec, v.Rows[0].Record)
	assert.False(t, v.Rows[0].Pending)
	assert.Equal(t, []models.ContactRecord{newRec}, backend.createCalls())
	assert.Equal(t, []models.Notification{{Level: models.NotificationSuccess, Message: ContactAddedMessage}}, rec.Notifications())
}

func TestController_AddContactRollsBackExactlyOneRow(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{
		listFn: func(context.Context, int, models.ListParams) (*models.ListResult, error) {
			return result("ann", "bob"), nil
		},
		createFn: func(context.Context, models.ContactRecord) error {
			close(entered)
			<-release
			return errors.New("Contact already exists")
		},
	}
	c, rec := newTestController(t, backend, 0)
	c.Load("")
	waitIdle(t, c)

	errc := make(chan error, 1)
	go func() {
		errc <- c.AddContact(context.Background(), models.ContactRecord{Name: "ann"})
	}()

	<-entered
	v := c.View()
	require.Len(t, v.Rows, 3, "optimistic row is added exactly once")
	assert.True(t, v.Rows[2].Pending)

	close(release)
	err := <-errc

	assert.EqualError(t, err, "Contact already exists")
	v = c.View()
	assert.Equal(t, []string{"ann", "bob"}, rowNames(v), "only the optimistic row is removed")
	assert.Equal(t, []models.Notification{{Level: models.NotificationError, Message: "Contact already exists"}}, rec.Notifications())
}

func TestController_CanceledAddRollsBackWithoutNotifying(t *testing.T) {
	backend := &fakeBackend{
		createFn: func(ctx context.Context, _ models.ContactRecord) error {
			return ctx.Err()
		},
	}
	c, rec := newTestController(t, backend, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.AddContact(ctx, models.ContactRecord{Name: "zed"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.View().Rows)
	assert.Empty(t, rec.Notifications())
}

func TestController_PendingRowSurvivesRefetch(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{
		listFn: func(context.Context, int, models.ListParams) (*models.ListResult, error) {
			return result("ann"), nil
		},
		createFn: func(context.Context, models.ContactRecord) error {
			close(entered)
			<-release
			return nil
		},
	}
	c, _ := newTestController(t, backend, 0)

	errc := make(chan error, 1)
	go func() {
		errc <- c.AddContact(context.Background(), models.ContactRecord{Name: "zed"})
	}()
	<-entered

	c.SetPage(1)
	assert.Eventually(t, func() bool { return len(c.View().Rows) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"ann", "zed"}, rowNames(c.View()))

	close(release)
	require.NoError(t, <-errc)
	waitIdle(t, c)
	assert.False(t, c.View().Rows[1].Pending)
}

func TestController_RefetchWithCommittedRecordShowsItOnce(t *testing.T) {
	added := models.ContactRecord{Name: "zed", ContactNumber: "9000000009", CompanyName: "Acme", Role: "HR", Location: "pune"}
	committed := added
	committed.ID = "srv-1"

	entered := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{
		listFn: func(context.Context, int, models.ListParams) (*models.ListResult, error) {
			return &models.ListResult{Data: []models.ContactRecord{committed}, TotalPages: 1}, nil
		},
		createFn: func(context.Context, models.ContactRecord) error {
			close(entered)
			<-release
			return nil
		},
	}
	c, _ := newTestController(t, backend, 0)

	errc := make(chan error, 1)
	go func() {
		errc <- c.AddContact(context.Background(), added)
	}()
	<-entered
	require.Len(t, c.View().Rows, 1)
	require.True(t, c.View().Rows[0].Pending)

	c.SetPage(1)
	assert.Eventually(t, func() bool {
		v := c.View()
		return !v.Loading && len(v.Rows) == 1 && !v.Rows[0].Pending
	}, time.Second, 5*time.Millisecond)

	close(release)
	require.NoError(t, <-errc)
	waitIdle(t, c)

	v := c.View()
	assert.Equal(t, []string{"zed"}, rowNames(v))
	assert.Equal(t, "srv-1", v.Rows[0].Key)
}

func TestController_SubscribeReceivesViews(t *testing.T) {
	backend := &fakeBackend{
		listFn: func(context.Context, int, models.ListParams) (*models.ListResult, error) {
			return nil, errors.New("boom")
		},
	}
	c, _ := newTestController(t, backend, 0)

	events, unsubscribe := c.Subscribe()
	defer unsubscribe()

	first := <-events
	require.Equal(t, EventView, first.Kind)
	assert.False(t, first.View.Loading)

	c.Load("role=HR")
	waitIdle(t, c)

	var kinds []EventKind
	for len(events) > 0 {
		ev := <-events
		kinds = append(kinds, ev.Kind)
		if ev.Kind == EventNotify {
			assert.Equal(t, "boom", ev.Notification.Message)
		}
	}
	assert.Equal(t, []EventKind{EventView, EventNotify, EventView}, kinds)
}

func TestController_CloseEndsSubscriptionsAndRejectsWork(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	backend := &fakeBackend{
		listFn: func(ctx context.Context, _ int, _ models.ListParams) (*models.ListResult, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-release:
				return result(), nil
			}
		},
	}
	c, rec := newTestController(t, backend, 0)
	events, _ := c.Subscribe()

	c.Load("")
	c.Close()

	for range events {
	}
	assert.ErrorIs(t, c.AddContact(context.Background(), models.ContactRecord{}), ErrClosed)
	assert.Empty(t, rec.Notifications(), "cancellation is never notified")

	c.SetQuery("ignored")
	assert.Len(t, backend.listCalls(), 1)
}
