package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bulletin/internal/models"
)

// stubService records calls and lets each test override the behavior it
// cares about. Unset hooks return empty results.
type stubService struct {
	mu sync.Mutex

	getContextFn          func(ctx context.Context) (*models.BulletinContext, error)
	activeCategoriesFn    func(ctx context.Context) ([]models.CategoryOption, error)
	activeStatusesFn      func(ctx context.Context, requestType models.RequestType) ([]string, error)
	listRequestsFn        func(ctx context.Context, requestType models.RequestType, filters Filters) ([]models.Request, error)
	getRequestFn          func(ctx context.Context, id uint) (*models.Request, error)
	createRequestFn       func(ctx context.Context, requestType models.RequestType, title, bodyHTML string, categoryIDs []uint) (*models.Request, error)
	updateStatusFn        func(ctx context.Context, id uint, status string) (*models.Request, error)
	updateDescriptionFn   func(ctx context.Context, id uint, bodyHTML string) (*models.Request, error)
	updateOwnerFn         func(ctx context.Context, id uint, ownerID *uint) (*models.Request, error)
	listCommentsFn        func(ctx context.Context, requestID uint) ([]models.Comment, error)
	createCommentFn       func(ctx context.Context, requestID uint, body string) (*models.Comment, error)
	supportOwnerOptionsFn func(ctx context.Context) ([]models.UserOption, error)

	listCalls    []listCall
	commentCalls int
}

type listCall struct {
	Type    models.RequestType
	Filters Filters
}

func (s *stubService) GetContext(ctx context.Context) (*models.BulletinContext, error) {
	if s.getContextFn != nil {
		return s.getContextFn(ctx)
	}
	return &models.BulletinContext{}, nil
}

func (s *stubService) ActiveCategories(ctx context.Context) ([]models.CategoryOption, error) {
	if s.activeCategoriesFn != nil {
		return s.activeCategoriesFn(ctx)
	}
	return nil, nil
}

func (s *stubService) ActiveStatuses(ctx context.Context, requestType models.RequestType) ([]string, error) {
	if s.activeStatusesFn != nil {
		return s.activeStatusesFn(ctx, requestType)
	}
	return nil, nil
}

func (s *stubService) ListRequests(ctx context.Context, requestType models.RequestType, filters Filters) ([]models.Request, error) {
	s.mu.Lock()
	s.listCalls = append(s.listCalls, listCall{Type: requestType, Filters: filters})
	s.mu.Unlock()
	if s.listRequestsFn != nil {
		return s.listRequestsFn(ctx, requestType, filters)
	}
	return nil, nil
}

func (s *stubService) GetRequest(ctx context.Context, id uint) (*models.Request, error) {
	if s.getRequestFn != nil {
		return s.getRequestFn(ctx, id)
	}
	return &models.Request{ID: id, Type: models.TypeSuggestion}, nil
}

func (s *stubService) CreateRequest(ctx context.Context, requestType models.RequestType, title, bodyHTML string, categoryIDs []uint) (*models.Request, error) {
	if s.createRequestFn != nil {
		return s.createRequestFn(ctx, requestType, title, bodyHTML, categoryIDs)
	}
	return &models.Request{ID: 1, Type: requestType, Title: title}, nil
}

func (s *stubService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Request, error) {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, id, status)
	}
	return &models.Request{ID: id, Status: status}, nil
}

func (s *stubService) UpdateDescription(ctx context.Context, id uint, bodyHTML string) (*models.Request, error) {
	if s.updateDescriptionFn != nil {
		return s.updateDescriptionFn(ctx, id, bodyHTML)
	}
	return &models.Request{ID: id, DescriptionHTML: bodyHTML}, nil
}

func (s *stubService) UpdateOwner(ctx context.Context, id uint, ownerID *uint) (*models.Request, error) {
	if s.updateOwnerFn != nil {
		return s.updateOwnerFn(ctx, id, ownerID)
	}
	return &models.Request{ID: id, Type: models.TypeSupport, OwnerID: ownerID}, nil
}

func (s *stubService) ListComments(ctx context.Context, requestID uint) ([]models.Comment, error) {
	if s.listCommentsFn != nil {
		return s.listCommentsFn(ctx, requestID)
	}
	return nil, nil
}

func (s *stubService) CreateComment(ctx context.Context, requestID uint, body string) (*models.Comment, error) {
	s.mu.Lock()
	s.commentCalls++
	s.mu.Unlock()
	if s.createCommentFn != nil {
		return s.createCommentFn(ctx, requestID, body)
	}
	return &models.Comment{ID: 1, RequestID: requestID, Body: body}, nil
}

func (s *stubService) SupportOwnerOptions(ctx context.Context) ([]models.UserOption, error) {
	if s.supportOwnerOptionsFn != nil {
		return s.supportOwnerOptionsFn(ctx)
	}
	return nil, nil
}

func (s *stubService) calls() []listCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]listCall(nil), s.listCalls...)
}

func (s *stubService) callsFor(requestType models.RequestType) []listCall {
	var out []listCall
	for _, call := range s.calls() {
		if call.Type == requestType {
			out = append(out, call)
		}
	}
	return out
}

func adminContext() func(ctx context.Context) (*models.BulletinContext, error) {
	return func(ctx context.Context) (*models.BulletinContext, error) {
		return &models.BulletinContext{IsAdmin: true}, nil
	}
}

func newController(t *testing.T, svc *stubService, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithNotifier(NopNotifier{})}, opts...)
	return NewController(7, svc, NewMemoryFilterStore(), opts...)
}

func TestFilters_Normalize(t *testing.T) {
	t.Parallel()

	t.Run("page size is always forced", func(t *testing.T) {
		t.Parallel()
		f := Filters{PageSize: 999, OwnerScope: ScopeAny}.Normalize(TabSuggestions, true)
		assert.Equal(t, PageSize, f.PageSize)
	})

	t.Run("non-admin support scope forced to any", func(t *testing.T) {
		t.Parallel()
		f := Filters{OwnerScope: ScopeMe}.Normalize(TabSupport, false)
		assert.Equal(t, ScopeAny, f.OwnerScope)
	})

	t.Run("admin support scope preserved", func(t *testing.T) {
		t.Parallel()
		f := Filters{OwnerScope: ScopeUnassigned}.Normalize(TabSupport, true)
		assert.Equal(t, ScopeUnassigned, f.OwnerScope)
	})

	t.Run("suggestion defaults follow role", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, ScopeAny, Filters{}.Normalize(TabSuggestions, true).OwnerScope)
		assert.Equal(t, ScopeMe, Filters{}.Normalize(TabSuggestions, false).OwnerScope)
	})
}

func TestController_Initialize(t *testing.T) {
	t.Parallel()

	t.Run("fetches suggestions only with role defaults", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{getContextFn: adminContext()}
		c := newController(t, svc)
		c.Initialize(context.Background())

		require.True(t, c.Initialized())
		assert.Equal(t, TabSuggestions, c.ActiveTab())

		calls := svc.calls()
		require.Len(t, calls, 1)
		assert.Equal(t, models.TypeSuggestion, calls[0].Type)
		assert.Equal(t, ScopeAny, calls[0].Filters.OwnerScope)
		assert.Equal(t, PageSize, calls[0].Filters.PageSize)
	})

	t.Run("non-admin suggestions default to me", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{}
		c := newController(t, svc)
		c.Initialize(context.Background())

		assert.Equal(t, ScopeMe, c.FiltersFor(TabSuggestions).OwnerScope)
		assert.Equal(t, ScopeAny, c.FiltersFor(TabSupport).OwnerScope)
	})

	t.Run("context failure falls back to non-admin silently", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{
			getContextFn: func(ctx context.Context) (*models.BulletinContext, error) {
				return nil, errors.New("down")
			},
		}
		c := newController(t, svc)
		c.Initialize(context.Background())

		require.True(t, c.Initialized())
		assert.False(t, c.IsAdmin())
		assert.Empty(t, c.AdminUsers())
	})

	t.Run("status vocabulary failure falls back to an any-only list", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{
			activeStatusesFn: func(ctx context.Context, requestType models.RequestType) ([]string, error) {
				return nil, errors.New("down")
			},
		}
		c := newController(t, svc)
		c.Initialize(context.Background())

		assert.Equal(t, []string{AnyStatusOption}, c.StatusOptions(TabSuggestions))
		assert.Equal(t, []string{AnyStatusOption}, c.StatusOptions(TabSupport))
	})

	t.Run("persisted filters are restored and normalized", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryFilterStore()
		require.NoError(t, store.Set(context.Background(), "bulletin:filters:support", Filters{
			Search:     "printer",
			OwnerScope: ScopeMe,
			PageSize:   5,
		}))

		svc := &stubService{}
		c := NewController(7, svc, store, WithNotifier(NopNotifier{}))
		c.Initialize(context.Background())

		restored := c.FiltersFor(TabSupport)
		assert.Equal(t, "printer", restored.Search)
		assert.Equal(t, ScopeAny, restored.OwnerScope)
		assert.Equal(t, PageSize, restored.PageSize)
	})
}

func TestController_SelectTab(t *testing.T) {
	t.Parallel()

	svc := &stubService{getContextFn: adminContext()}
	c := newController(t, svc)
	c.Initialize(context.Background())

	c.SelectTab(context.Background(), TabSupport)
	assert.Equal(t, TabSupport, c.ActiveTab())
	assert.Len(t, svc.callsFor(models.TypeSuggestion), 1, "tab being left must not refetch")
	assert.Len(t, svc.callsFor(models.TypeSupport), 1)

	// Selecting the active tab again is a no-op.
	c.SelectTab(context.Background(), TabSupport)
	assert.Len(t, svc.callsFor(models.TypeSupport), 1)
}

func TestController_ApplyFilters(t *testing.T) {
	t.Parallel()

	t.Run("persists snapshot and refetches that tab only", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryFilterStore()
		svc := &stubService{getContextFn: adminContext()}
		c := NewController(7, svc, store, WithNotifier(NopNotifier{}))
		c.Initialize(context.Background())

		c.ApplyFilters(context.Background(), TabSuggestions, Filters{Search: "dark", PageSize: 3})

		saved, found, err := store.Get(context.Background(), "bulletin:filters:suggestions")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "dark", saved.Search)
		assert.Equal(t, PageSize, saved.PageSize)

		assert.Len(t, svc.callsFor(models.TypeSuggestion), 2)
		assert.Empty(t, svc.callsFor(models.TypeSupport))
	})

	t.Run("admin scopes support to one user", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{getContextFn: adminContext()}
		c := newController(t, svc)
		c.Initialize(context.Background())

		c.ApplyFilters(context.Background(), TabSupport, Filters{OwnerScope: ScopeUser(42)})

		calls := svc.callsFor(models.TypeSupport)
		require.Len(t, calls, 1)
		assert.Equal(t, "USER:42", calls[0].Filters.OwnerScope)
	})

	t.Run("reset restores defaults", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{}
		c := newController(t, svc)
		c.Initialize(context.Background())

		c.ApplyFilters(context.Background(), TabSuggestions, Filters{Search: "x", OwnerScope: ScopeAny})
		c.ResetFilters(context.Background(), TabSuggestions)

		f := c.FiltersFor(TabSuggestions)
		assert.Empty(t, f.Search)
		assert.Equal(t, ScopeMe, f.OwnerScope)
	})
}

func TestController_StaleListResponseIsDiscarded(t *testing.T) {
	t.Parallel()

	started := make(chan string, 2)
	release := map[string]chan struct{}{
		"old": make(chan struct{}),
		"new": make(chan struct{}),
	}

	svc := &stubService{
		listRequestsFn: func(ctx context.Context, requestType models.RequestType, filters Filters) ([]models.Request, error) {
			name := "old"
			if filters.Search == "new" {
				name = "new"
			}
			started <- name
			<-release[name]
			return []models.Request{{ID: 1, Title: name}}, nil
		},
	}
	c := newController(t, svc)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.ApplyFilters(context.Background(), TabSuggestions, Filters{Search: "old"})
	}()
	<-started
	go func() {
		defer wg.Done()
		c.ApplyFilters(context.Background(), TabSuggestions, Filters{Search: "new"})
	}()
	<-started

	// The newer fetch resolves first; the older one must not overwrite it.
	close(release["new"])
	close(release["old"])
	wg.Wait()

	list := c.List(TabSuggestions)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].Title)
}

func TestController_StaleDetailResponseIsDiscarded(t *testing.T) {
	t.Parallel()

	t.Run("close during load stays closed", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{}, 1)
		release := make(chan struct{})
		svc := &stubService{
			getRequestFn: func(ctx context.Context, id uint) (*models.Request, error) {
				started <- struct{}{}
				<-release
				return &models.Request{ID: id, Type: models.TypeSuggestion}, nil
			},
		}
		c := newController(t, svc)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.OpenDetail(context.Background(), 5)
		}()
		<-started

		// The user closes the panel while the record is still loading; the
		// late response must not reopen it.
		c.CloseDetail()
		close(release)
		wg.Wait()

		assert.Equal(t, DetailClosed, c.Detail().State)
	})

	t.Run("slow open never overwrites a newer one", func(t *testing.T) {
		t.Parallel()

		started := make(chan uint, 2)
		release := map[uint]chan struct{}{
			1: make(chan struct{}),
			2: make(chan struct{}),
		}
		svc := &stubService{
			getRequestFn: func(ctx context.Context, id uint) (*models.Request, error) {
				started <- id
				<-release[id]
				return &models.Request{ID: id, Type: models.TypeSuggestion}, nil
			},
		}
		c := newController(t, svc)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.OpenDetail(context.Background(), 1)
		}()
		<-started
		go func() {
			defer wg.Done()
			c.OpenDetail(context.Background(), 2)
		}()
		<-started

		// The newer open resolves first; the older record must not replace it.
		close(release[2])
		close(release[1])
		wg.Wait()

		d := c.Detail()
		require.Equal(t, DetailOpen, d.State)
		assert.Equal(t, uint(2), d.Record.ID)
	})

	t.Run("stale failure is dropped silently", func(t *testing.T) {
		t.Parallel()

		started := make(chan uint, 2)
		release := map[uint]chan struct{}{
			1: make(chan struct{}),
			2: make(chan struct{}),
		}
		svc := &stubService{
			getRequestFn: func(ctx context.Context, id uint) (*models.Request, error) {
				started <- id
				<-release[id]
				if id == 1 {
					return nil, errors.New("gone")
				}
				return &models.Request{ID: id, Type: models.TypeSuggestion}, nil
			},
		}
		c := newController(t, svc)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.OpenDetail(context.Background(), 1)
		}()
		<-started
		go func() {
			defer wg.Done()
			c.OpenDetail(context.Background(), 2)
		}()
		<-started

		close(release[2])
		close(release[1])
		wg.Wait()

		d := c.Detail()
		require.Equal(t, DetailOpen, d.State, "a stale failure must not close the newer panel")
		assert.Equal(t, uint(2), d.Record.ID)
	})
}

func TestController_OpenDetail(t *testing.T) {
	t.Parallel()

	t.Run("failure leaves the panel closed", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{
			getRequestFn: func(ctx context.Context, id uint) (*models.Request, error) {
				return nil, errors.New("gone")
			},
		}
		c := newController(t, svc)
		c.OpenDetail(context.Background(), 99)

		assert.Equal(t, DetailClosed, c.Detail().State)
	})

	t.Run("comment fetch failure also closes", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{
			listCommentsFn: func(ctx context.Context, requestID uint) ([]models.Comment, error) {
				return nil, errors.New("gone")
			},
		}
		c := newController(t, svc)
		c.OpenDetail(context.Background(), 5)

		assert.Equal(t, DetailClosed, c.Detail().State)
	})

	t.Run("opens with record, thread and owner roster for admins", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{
			getContextFn: adminContext(),
			getRequestFn: func(ctx context.Context, id uint) (*models.Request, error) {
				return &models.Request{ID: id, Type: models.TypeSupport, DescriptionHTML: "<p>vpn</p>"}, nil
			},
			listCommentsFn: func(ctx context.Context, requestID uint) ([]models.Comment, error) {
				return []models.Comment{{ID: 1, Body: "first"}}, nil
			},
			supportOwnerOptionsFn: func(ctx context.Context) ([]models.UserOption, error) {
				return []models.UserOption{{ID: 11, Name: "lead"}}, nil
			},
		}
		c := newController(t, svc)
		c.Initialize(context.Background())
		c.OpenDetail(context.Background(), 5)

		d := c.Detail()
		require.Equal(t, DetailOpen, d.State)
		assert.Equal(t, uint(5), d.Record.ID)
		require.Len(t, d.Comments, 1)
		require.Len(t, d.OwnerOptions, 1)
		assert.Equal(t, "<p>vpn</p>", d.DescriptionDraft)
		assert.True(t, d.CanEditStatus(true))
		assert.True(t, d.CanEditOwner(true))
		assert.False(t, d.CanEditOwner(false))
	})
}

func TestController_SaveStatus(t *testing.T) {
	t.Parallel()

	svc := &stubService{
		getContextFn: adminContext(),
		updateStatusFn: func(ctx context.Context, id uint, status string) (*models.Request, error) {
			return &models.Request{ID: id, Type: models.TypeSuggestion, Status: status}, nil
		},
	}
	c := newController(t, svc, WithFlashDuration(20*time.Millisecond))
	c.Initialize(context.Background())
	c.OpenDetail(context.Background(), 5)

	before := len(svc.callsFor(models.TypeSuggestion))
	c.SaveStatus(context.Background(), "Accepted")

	d := c.Detail()
	assert.Equal(t, "Accepted", d.Record.Status, "record replaced with server response")
	assert.True(t, d.StatusSaved)
	assert.Len(t, svc.callsFor(models.TypeSuggestion), before+1, "active tab refetched")
	assert.Empty(t, svc.callsFor(models.TypeSupport))

	assert.Eventually(t, func() bool {
		return !c.Detail().StatusSaved
	}, time.Second, 5*time.Millisecond, "saved acknowledgment must auto-clear")
}

func TestController_SaveStatusAfterTabSwitch(t *testing.T) {
	t.Parallel()

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	svc := &stubService{
		getContextFn: adminContext(),
		updateStatusFn: func(ctx context.Context, id uint, status string) (*models.Request, error) {
			started <- struct{}{}
			<-release
			return &models.Request{ID: id, Type: models.TypeSuggestion, Status: status}, nil
		},
	}
	c := newController(t, svc, WithFlashDuration(10*time.Millisecond))
	c.Initialize(context.Background())
	c.OpenDetail(context.Background(), 5)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.SaveStatus(context.Background(), "Accepted")
	}()
	<-started

	// The user switches tabs while the save is in flight.
	c.SelectTab(context.Background(), TabSupport)
	supportBefore := len(svc.callsFor(models.TypeSupport))
	suggestionsBefore := len(svc.callsFor(models.TypeSuggestion))

	close(release)
	wg.Wait()

	assert.Len(t, svc.callsFor(models.TypeSupport), supportBefore+1, "refetch lands on the tab showing now")
	assert.Len(t, svc.callsFor(models.TypeSuggestion), suggestionsBefore, "departed tab is not refetched")
}

func TestController_SaveDescription(t *testing.T) {
	t.Parallel()

	t.Run("failure preserves the draft", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{
			updateDescriptionFn: func(ctx context.Context, id uint, bodyHTML string) (*models.Request, error) {
				return nil, errors.New("down")
			},
		}
		c := newController(t, svc)
		c.OpenDetail(context.Background(), 5)
		c.BeginEditDescription()
		c.SetDescriptionDraft("<p>edited</p>")
		c.SaveDescription(context.Background())

		d := c.Detail()
		assert.True(t, d.EditingDescription)
		assert.Equal(t, "<p>edited</p>", d.DescriptionDraft)
	})

	t.Run("success commits and closes the editor", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{}
		c := newController(t, svc)
		c.OpenDetail(context.Background(), 5)
		c.BeginEditDescription()
		c.SetDescriptionDraft("<p>edited</p>")
		c.SaveDescription(context.Background())

		d := c.Detail()
		assert.False(t, d.EditingDescription)
		assert.Equal(t, "<p>edited</p>", d.Record.DescriptionHTML)
	})
}

func TestController_PostComment(t *testing.T) {
	t.Parallel()

	t.Run("blank composer is a no-op", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{}
		c := newController(t, svc)
		c.OpenDetail(context.Background(), 5)
		c.SetComposer("   ")
		c.PostComment(context.Background())

		assert.Zero(t, svc.commentCalls, "no service call for a blank composer")
		assert.Equal(t, "   ", c.Detail().Composer, "composer unchanged")
	})

	t.Run("success appends without refetch and clears the composer", func(t *testing.T) {
		t.Parallel()

		listCommentCalls := 0
		svc := &stubService{
			listCommentsFn: func(ctx context.Context, requestID uint) ([]models.Comment, error) {
				listCommentCalls++
				return []models.Comment{{ID: 1, Body: "first"}}, nil
			},
			createCommentFn: func(ctx context.Context, requestID uint, body string) (*models.Comment, error) {
				return &models.Comment{ID: 2, RequestID: requestID, Body: body}, nil
			},
		}
		c := newController(t, svc)
		c.OpenDetail(context.Background(), 5)
		c.SetComposer("agreed")
		c.PostComment(context.Background())

		d := c.Detail()
		require.Len(t, d.Comments, 2)
		assert.Equal(t, "agreed", d.Comments[1].Body)
		assert.Empty(t, d.Composer)
		assert.Equal(t, 2, d.ThreadVersion, "thread growth signals scroll-to-bottom")
		assert.Equal(t, 1, listCommentCalls, "no thread refetch on post")
	})

	t.Run("failure preserves the composer", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{
			createCommentFn: func(ctx context.Context, requestID uint, body string) (*models.Comment, error) {
				return nil, errors.New("down")
			},
		}
		c := newController(t, svc)
		c.OpenDetail(context.Background(), 5)
		c.SetComposer("agreed")
		c.PostComment(context.Background())

		assert.Equal(t, "agreed", c.Detail().Composer)
	})
}

func TestController_Submission(t *testing.T) {
	t.Parallel()

	t.Run("fresh form per open", func(t *testing.T) {
		t.Parallel()

		c := newController(t, &stubService{})
		c.LaunchSubmission(models.TypeSuggestion)
		c.SetSubmission("Dark mode", "<p>please</p>", []uint{1})
		c.CancelSubmission()
		c.LaunchSubmission(models.TypeSupport)

		form := c.SubmissionState()
		assert.True(t, form.Open)
		assert.Equal(t, models.TypeSupport, form.Type)
		assert.Empty(t, form.Title, "nothing carries over from the prior open")
		assert.Empty(t, form.CategoryIDs)
	})

	t.Run("validation triple", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			form Submission
			ok   bool
		}{
			{name: "type unset", form: Submission{BodyHTML: "<p>x</p>", CategoryIDs: []uint{1}}},
			{name: "zero categories", form: Submission{Type: models.TypeSuggestion, BodyHTML: "<p>x</p>"}},
			{name: "blank body after stripping", form: Submission{Type: models.TypeSuggestion, BodyHTML: "<p> <br> </p>", CategoryIDs: []uint{1}}},
			{name: "all present", form: Submission{Type: models.TypeSuggestion, BodyHTML: "<p>x</p>", CategoryIDs: []uint{1}}, ok: true},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				err := tt.form.Validate()
				if tt.ok {
					assert.NoError(t, err)
				} else {
					assert.Error(t, err)
				}
			})
		}
	})

	t.Run("invalid form never reaches the service", func(t *testing.T) {
		t.Parallel()

		created := false
		svc := &stubService{
			createRequestFn: func(ctx context.Context, requestType models.RequestType, title, bodyHTML string, categoryIDs []uint) (*models.Request, error) {
				created = true
				return &models.Request{ID: 1}, nil
			},
		}
		c := newController(t, svc)
		c.LaunchSubmission(models.TypeSuggestion)
		c.SetSubmission("", "<p><br></p>", nil)

		err := c.Submit(context.Background())
		require.Error(t, err)
		assert.False(t, created)
		assert.True(t, c.SubmissionState().Open, "form stays open for retry")
	})

	t.Run("success closes the modal and refreshes viewed tabs", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{getContextFn: adminContext()}
		c := newController(t, svc)
		c.Initialize(context.Background())
		c.SelectTab(context.Background(), TabSupport)

		suggestionsBefore := len(svc.callsFor(models.TypeSuggestion))
		supportBefore := len(svc.callsFor(models.TypeSupport))

		c.LaunchSubmission(models.TypeSupport)
		c.SetSubmission("Printer on fire", "<p>literally</p>", []uint{2})
		require.NoError(t, c.Submit(context.Background()))

		assert.False(t, c.SubmissionState().Open)
		assert.Len(t, svc.callsFor(models.TypeSuggestion), suggestionsBefore+1)
		assert.Len(t, svc.callsFor(models.TypeSupport), supportBefore+1)
	})

	t.Run("service failure leaves entered data intact", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{
			createRequestFn: func(ctx context.Context, requestType models.RequestType, title, bodyHTML string, categoryIDs []uint) (*models.Request, error) {
				return nil, errors.New("down")
			},
		}
		c := newController(t, svc)
		c.LaunchSubmission(models.TypeSuggestion)
		c.SetSubmission("Dark mode", "<p>please</p>", []uint{1})

		require.Error(t, c.Submit(context.Background()))

		form := c.SubmissionState()
		assert.True(t, form.Open)
		assert.Equal(t, "Dark mode", form.Title)
		assert.Equal(t, []uint{1}, form.CategoryIDs)
	})
}

func TestGroupByStatus(t *testing.T) {
	t.Parallel()

	labels := []string{"New", "In Progress", "Done"}
	records := []models.Request{
		{ID: 1, Status: "new"},
		{ID: 2, Status: "IN PROGRESS"},
		{ID: 3, Status: "Weird"},
		{ID: 4, Status: "Done"},
	}

	columns := GroupByStatus(records, labels)
	require.Len(t, columns, 3)
	assert.Equal(t, []uint{1, 3}, recordIDs(columns[0].Records), "case-insensitive match plus unmatched fallback to first column")
	assert.Equal(t, []uint{2}, recordIDs(columns[1].Records))
	assert.Equal(t, []uint{4}, recordIDs(columns[2].Records))

	assert.Nil(t, GroupByStatus(records, nil))
}

func TestController_KanbanFallsBackToCatchAllColumn(t *testing.T) {
	t.Parallel()

	svc := &stubService{
		activeStatusesFn: func(ctx context.Context, requestType models.RequestType) ([]string, error) {
			return nil, errors.New("vocabulary unavailable")
		},
		listRequestsFn: func(ctx context.Context, requestType models.RequestType, filters Filters) ([]models.Request, error) {
			return []models.Request{
				{ID: 1, Type: models.TypeSupport, Status: "New"},
				{ID: 2, Type: models.TypeSupport, Status: "Done"},
			}, nil
		},
	}
	c := newController(t, svc)
	c.Initialize(context.Background())
	c.SelectTab(context.Background(), TabSupport)

	columns := c.Kanban()
	require.Len(t, columns, 1)
	assert.Equal(t, AnyStatusOption, columns[0].Label)
	assert.Equal(t, []uint{1, 2}, recordIDs(columns[0].Records), "records stay visible under the fallback vocabulary")
}

func TestAdminScenario(t *testing.T) {
	t.Parallel()

	svc := &stubService{getContextFn: adminContext()}
	c := newController(t, svc)

	// Admin with no prior filters opens the app.
	c.Initialize(context.Background())
	calls := svc.callsFor(models.TypeSuggestion)
	require.Len(t, calls, 1)
	assert.Equal(t, ScopeAny, calls[0].Filters.OwnerScope)

	// Switches to the Support tab.
	c.SelectTab(context.Background(), TabSupport)
	supportCalls := svc.callsFor(models.TypeSupport)
	require.Len(t, supportCalls, 1)
	assert.Equal(t, ScopeAny, supportCalls[0].Filters.OwnerScope)

	// Applies a category filter.
	c.ApplyFilters(context.Background(), TabSupport, Filters{CategoryName: "Hardware"})
	supportCalls = svc.callsFor(models.TypeSupport)
	require.Len(t, supportCalls, 2)
	assert.Equal(t, "Hardware", supportCalls[1].Filters.CategoryName)
	assert.Equal(t, ScopeAny, supportCalls[1].Filters.OwnerScope)
	assert.Equal(t, PageSize, supportCalls[1].Filters.PageSize)
	assert.Empty(t, supportCalls[1].Filters.Search)
}

func TestRedisFilterStore(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisFilterStore(client)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "bulletin:filters:suggestions")
	require.NoError(t, err)
	assert.False(t, found)

	want := Filters{Search: "vpn", Status: "New", OwnerScope: ScopeUnassigned, PageSize: PageSize}
	require.NoError(t, store.Set(ctx, "bulletin:filters:suggestions", want))

	got, found, err := store.Get(ctx, "bulletin:filters:suggestions")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)
}

func TestShortTimestamp(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, time.March, 4, 15, 30, 0, 0, time.Local)
	assert.Equal(t, "Mar 4, 3:30 PM", ShortTimestamp(ts))
}

func recordIDs(records []models.Request) []uint {
	ids := make([]uint, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}
