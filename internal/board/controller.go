package board

import (
	"context"
	"strings"
	"sync"
	"time"

	"bulletin/internal/models"
)

// DefaultFlashDuration is how long the saved-status acknowledgment stays
// visible before it clears itself.
const DefaultFlashDuration = 1600 * time.Millisecond

// AnyStatusOption is the only option offered when the status vocabulary
// cannot be fetched.
const AnyStatusOption = "Any"

const defaultStoreKeyPrefix = "bulletin:filters"

// Controller is the single source of truth for board state: the active tab,
// per-tab filters and lists, the detail panel and the submission modal. All
// methods are safe for concurrent use; the mutex is released around service
// calls so a slow fetch never blocks unrelated actions.
type Controller struct {
	svc      Service
	store    FilterStore
	notifier Notifier

	userID        uint
	keyPrefix     string
	flashDuration time.Duration

	mu            sync.Mutex
	initialized   bool
	isAdmin       bool
	adminUsers    []models.UserOption
	bulletinUsers []models.UserOption
	categories    []models.CategoryOption
	statusOptions map[Tab][]string

	activeTab Tab
	filters   map[Tab]Filters
	lists     map[Tab][]models.Request
	loading   map[Tab]bool
	fetchSeq  map[Tab]uint64
	viewed    map[Tab]bool

	detail     Detail
	detailSeq  uint64
	submission Submission
	flashTimer *time.Timer
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier replaces the default log-backed notifier.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithFlashDuration overrides the saved-status acknowledgment duration.
func WithFlashDuration(d time.Duration) Option {
	return func(c *Controller) { c.flashDuration = d }
}

// WithStoreKeyPrefix namespaces the persisted filter snapshots, typically
// per user.
func WithStoreKeyPrefix(prefix string) Option {
	return func(c *Controller) { c.keyPrefix = prefix }
}

// NewController creates a Controller for one user session.
func NewController(userID uint, svc Service, store FilterStore, opts ...Option) *Controller {
	c := &Controller{
		svc:           svc,
		store:         store,
		notifier:      LogNotifier{},
		userID:        userID,
		keyPrefix:     defaultStoreKeyPrefix,
		flashDuration: DefaultFlashDuration,
		statusOptions: make(map[Tab][]string),
		activeTab:     TabSuggestions,
		filters:       make(map[Tab]Filters),
		lists:         make(map[Tab][]models.Request),
		loading:       make(map[Tab]bool),
		fetchSeq:      make(map[Tab]uint64),
		viewed:        make(map[Tab]bool),
		detail:        Detail{State: DetailClosed},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) storeKey(tab Tab) string {
	return c.keyPrefix + ":" + string(tab)
}

// Initialize loads the session context and the vocabularies, restores
// persisted filters and fetches the default tab's list. Context and
// vocabulary failures fall back silently: non-admin, empty rosters, empty
// categories, an "Any"-only status list.
func (c *Controller) Initialize(ctx context.Context) {
	bctx, err := c.svc.GetContext(ctx)

	c.mu.Lock()
	if err == nil {
		c.isAdmin = bctx.IsAdmin
		c.adminUsers = bctx.AdminUsers
		c.bulletinUsers = bctx.BulletinUsers
	}
	isAdmin := c.isAdmin
	c.mu.Unlock()

	if categories, err := c.svc.ActiveCategories(ctx); err == nil {
		c.mu.Lock()
		c.categories = categories
		c.mu.Unlock()
	}

	for _, tab := range []Tab{TabSuggestions, TabSupport} {
		options, err := c.svc.ActiveStatuses(ctx, tab.RequestType())
		if err != nil || len(options) == 0 {
			options = []string{AnyStatusOption}
		}

		filters, found, serr := c.store.Get(ctx, c.storeKey(tab))
		if serr != nil || !found {
			filters = DefaultFilters(tab, isAdmin)
		} else {
			filters = filters.Normalize(tab, isAdmin)
		}

		c.mu.Lock()
		c.statusOptions[tab] = options
		c.filters[tab] = filters
		c.mu.Unlock()
	}

	c.mu.Lock()
	c.activeTab = TabSuggestions
	c.viewed[TabSuggestions] = true
	c.initialized = true
	c.mu.Unlock()

	c.fetchList(ctx, TabSuggestions)
}

// SelectTab switches the active tab and fetches the new tab's list with its
// last-known filters. The tab being left is never refetched; selecting the
// already-active tab is a no-op.
func (c *Controller) SelectTab(ctx context.Context, tab Tab) {
	c.mu.Lock()
	if tab == c.activeTab {
		c.mu.Unlock()
		return
	}
	c.activeTab = tab
	c.viewed[tab] = true
	c.mu.Unlock()

	c.fetchList(ctx, tab)
}

// ApplyFilters normalizes the input, persists the snapshot and refetches
// that tab only.
func (c *Controller) ApplyFilters(ctx context.Context, tab Tab, filters Filters) {
	c.mu.Lock()
	normalized := filters.Normalize(tab, c.isAdmin)
	c.filters[tab] = normalized
	c.mu.Unlock()

	// Snapshot persistence is best-effort; a store failure never blocks the
	// refetch.
	_ = c.store.Set(ctx, c.storeKey(tab), normalized)

	c.fetchList(ctx, tab)
}

// ResetFilters restores a tab's role-appropriate defaults and refetches it.
func (c *Controller) ResetFilters(ctx context.Context, tab Tab) {
	c.mu.Lock()
	isAdmin := c.isAdmin
	c.mu.Unlock()

	c.ApplyFilters(ctx, tab, DefaultFilters(tab, isAdmin))
}

// fetchList refreshes one tab's list. Each fetch takes a sequence number; a
// response only lands if no newer fetch for the same tab has started, so a
// stale response never overwrites a newer one.
func (c *Controller) fetchList(ctx context.Context, tab Tab) {
	c.mu.Lock()
	c.fetchSeq[tab]++
	seq := c.fetchSeq[tab]
	c.loading[tab] = true
	filters := c.filters[tab]
	c.mu.Unlock()

	records, err := c.svc.ListRequests(ctx, tab.RequestType(), filters)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetchSeq[tab] != seq {
		return
	}
	c.loading[tab] = false
	if err != nil {
		c.notifier.Error("Could not load the list. Try again.")
		return
	}
	c.lists[tab] = records
}

// OpenDetail fetches a record and its thread and opens the detail panel.
// Any fetch failure returns the panel to closed. Admins opening a Support
// Request also get the assignable-owner roster; that roster failing falls
// back to an empty list without closing the panel.
//
// Opens carry a sequence number like list fetches do: a response only lands
// while it is still the latest open, so a record fetched for a panel the
// user has since closed or replaced is discarded.
func (c *Controller) OpenDetail(ctx context.Context, id uint) {
	c.mu.Lock()
	c.stopFlashLocked()
	c.detailSeq++
	seq := c.detailSeq
	c.detail = Detail{State: DetailLoading}
	isAdmin := c.isAdmin
	c.mu.Unlock()

	record, err := c.svc.GetRequest(ctx, id)
	if err != nil {
		c.closeDetailWithError(seq)
		return
	}

	comments, err := c.svc.ListComments(ctx, id)
	if err != nil {
		c.closeDetailWithError(seq)
		return
	}

	var ownerOptions []models.UserOption
	if isAdmin && record.Type == models.TypeSupport {
		if options, err := c.svc.SupportOwnerOptions(ctx); err == nil {
			ownerOptions = options
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detailSeq != seq {
		return
	}
	c.detail = Detail{
		State:            DetailOpen,
		Record:           record,
		Comments:         comments,
		OwnerOptions:     ownerOptions,
		DescriptionDraft: record.DescriptionHTML,
		ThreadVersion:    len(comments),
	}
}

// closeDetailWithError closes the panel a failed open was loading. A stale
// failure is dropped silently; the panel it was for is already gone.
func (c *Controller) closeDetailWithError(seq uint64) {
	c.mu.Lock()
	if c.detailSeq != seq {
		c.mu.Unlock()
		return
	}
	c.detail = Detail{State: DetailClosed}
	c.mu.Unlock()
	c.notifier.Error("Could not open the record. Try again.")
}

// CloseDetail clears the detail state and invalidates any open still in
// flight.
func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopFlashLocked()
	c.detailSeq++
	c.detail = Detail{State: DetailClosed}
}

// SaveStatus updates the open record's status, shows the transient saved
// acknowledgment and refetches the active tab so the list reflects the
// change. The local record is always replaced with the server's response.
func (c *Controller) SaveStatus(ctx context.Context, status string) {
	c.mu.Lock()
	if !c.detail.Open() {
		c.mu.Unlock()
		return
	}
	id := c.detail.Record.ID
	c.mu.Unlock()

	updated, err := c.svc.UpdateStatus(ctx, id, status)
	if err != nil {
		c.notifier.Error(userMessage(err, "Could not save the status."))
		return
	}

	c.mu.Lock()
	if c.detail.Open() && c.detail.Record.ID == id {
		c.detail.Record = updated
		c.detail.StatusSaved = true
		c.stopFlashLocked()
		c.flashTimer = time.AfterFunc(c.flashDuration, c.clearFlash)
	}
	// The tab may have changed while the save was in flight; refresh
	// whichever is showing now.
	activeTab := c.activeTab
	c.mu.Unlock()

	c.fetchList(ctx, activeTab)
}

func (c *Controller) clearFlash() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail.StatusSaved = false
	c.flashTimer = nil
}

func (c *Controller) stopFlashLocked() {
	if c.flashTimer != nil {
		c.flashTimer.Stop()
		c.flashTimer = nil
	}
}

// BeginEditDescription opens the description editor seeded with the stored
// body.
func (c *Controller) BeginEditDescription() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.detail.Open() {
		return
	}
	c.detail.EditingDescription = true
	c.detail.DescriptionDraft = c.detail.Record.DescriptionHTML
}

// SetDescriptionDraft updates the uncommitted description draft.
func (c *Controller) SetDescriptionDraft(draft string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail.DescriptionDraft = draft
}

// CancelEditDescription discards the draft and closes the editor.
func (c *Controller) CancelEditDescription() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.detail.Open() {
		return
	}
	c.detail.EditingDescription = false
	c.detail.DescriptionDraft = c.detail.Record.DescriptionHTML
}

// SaveDescription commits the draft. On failure the draft and the editor
// stay as they were so the user can retry.
func (c *Controller) SaveDescription(ctx context.Context) {
	c.mu.Lock()
	if !c.detail.Open() {
		c.mu.Unlock()
		return
	}
	id := c.detail.Record.ID
	draft := c.detail.DescriptionDraft
	c.mu.Unlock()

	updated, err := c.svc.UpdateDescription(ctx, id, draft)
	if err != nil {
		c.notifier.Error(userMessage(err, "Could not save the description."))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detail.Open() && c.detail.Record.ID == id {
		c.detail.Record = updated
		c.detail.EditingDescription = false
		c.detail.DescriptionDraft = updated.DescriptionHTML
	}
}

// SaveOwner assigns or clears the open Support Request's owner.
func (c *Controller) SaveOwner(ctx context.Context, ownerID *uint) {
	c.mu.Lock()
	if !c.detail.Open() {
		c.mu.Unlock()
		return
	}
	id := c.detail.Record.ID
	c.mu.Unlock()

	updated, err := c.svc.UpdateOwner(ctx, id, ownerID)
	if err != nil {
		c.notifier.Error(userMessage(err, "Could not save the owner."))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detail.Open() && c.detail.Record.ID == id {
		c.detail.Record = updated
	}
}

// SetComposer updates the comment composer text.
func (c *Controller) SetComposer(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail.Composer = text
}

// PostComment submits the composer. A blank composer is a no-op with no
// service call. On success the comment is appended to the in-memory thread
// without a refetch and the composer clears; on failure the composer text
// is preserved for retry.
func (c *Controller) PostComment(ctx context.Context) {
	c.mu.Lock()
	if !c.detail.Open() {
		c.mu.Unlock()
		return
	}
	id := c.detail.Record.ID
	body := c.detail.Composer
	c.mu.Unlock()

	if strings.TrimSpace(body) == "" {
		return
	}

	comment, err := c.svc.CreateComment(ctx, id, body)
	if err != nil {
		c.notifier.Error(userMessage(err, "Could not post the comment."))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detail.Open() && c.detail.Record.ID == id {
		c.detail.Comments = append(c.detail.Comments, *comment)
		c.detail.ThreadVersion = len(c.detail.Comments)
		c.detail.Composer = ""
	}
}

// LaunchSubmission opens the submission modal with a fresh form for the
// given type.
func (c *Controller) LaunchSubmission(requestType models.RequestType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submission = NewSubmission(requestType)
}

// CancelSubmission closes the modal and discards the form.
func (c *Controller) CancelSubmission() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submission = Submission{}
}

// SetSubmission replaces the form's entered values while the modal is open.
func (c *Controller) SetSubmission(title, bodyHTML string, categoryIDs []uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.submission.Open {
		return
	}
	c.submission.Title = title
	c.submission.BodyHTML = bodyHTML
	c.submission.CategoryIDs = categoryIDs
}

// Submit validates and sends the form. On failure the form stays intact for
// retry; on success the modal closes and every previously viewed tab is
// refreshed, the active one always included.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	form := c.submission
	c.mu.Unlock()

	if !form.Open {
		return nil
	}
	if err := form.Validate(); err != nil {
		c.notifier.Error(userMessage(err, "Check the form and try again."))
		return err
	}

	created, err := c.svc.CreateRequest(ctx, form.Type, form.Title, form.BodyHTML, form.CategoryIDs)
	if err != nil {
		c.notifier.Error(userMessage(err, "Could not submit the request."))
		return err
	}

	c.mu.Lock()
	c.submission = Submission{}
	var tabs []Tab
	for tab, seen := range c.viewed {
		if seen {
			tabs = append(tabs, tab)
		}
	}
	c.mu.Unlock()

	c.notifier.Success("Request " + created.RecordNumber + " submitted.")
	for _, tab := range tabs {
		c.fetchList(ctx, tab)
	}
	return nil
}

// userMessage prefers the service's own validation wording when there is
// one.
func userMessage(err error, fallback string) string {
	if appErr, ok := err.(*models.AppError); ok && appErr.Code != models.ErrCodeInternal {
		return appErr.Message
	}
	return fallback
}

// Accessors below return copies so renderers never share the controller's
// internal state.

func (c *Controller) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

func (c *Controller) ActiveTab() Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeTab
}

func (c *Controller) IsAdmin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isAdmin
}

func (c *Controller) Categories() []models.CategoryOption {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CategoryOption(nil), c.categories...)
}

func (c *Controller) StatusOptions(tab Tab) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.statusOptions[tab]...)
}

func (c *Controller) FiltersFor(tab Tab) Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters[tab]
}

func (c *Controller) List(tab Tab) []models.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Request(nil), c.lists[tab]...)
}

func (c *Controller) Loading(tab Tab) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading[tab]
}

// Kanban projects the support list into status columns. When the status
// vocabulary fell back to the Any-only list, every record lands in that one
// catch-all column rather than vanishing from the board.
func (c *Controller) Kanban() []KanbanColumn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GroupByStatus(c.lists[TabSupport], c.statusOptions[TabSupport])
}

// CanEditStatus reports whether the session user may edit the open
// record's status.
func (c *Controller) CanEditStatus() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detail.CanEditStatus(c.isAdmin)
}

// CanEditOwner reports whether the session user may edit the open record's
// owner.
func (c *Controller) CanEditOwner() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detail.CanEditOwner(c.isAdmin)
}

// CanEditDescription reports whether the session user may edit the open
// record's description.
func (c *Controller) CanEditDescription() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detail.CanEditDescription(c.isAdmin, c.userID)
}

func (c *Controller) Detail() Detail {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.detail
	d.Comments = append([]models.Comment(nil), c.detail.Comments...)
	d.OwnerOptions = append([]models.UserOption(nil), c.detail.OwnerOptions...)
	return d
}

func (c *Controller) SubmissionState() Submission {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.submission
	s.CategoryIDs = append([]uint(nil), c.submission.CategoryIDs...)
	return s
}

// AdminUsers returns the admin roster from the session context.
func (c *Controller) AdminUsers() []models.UserOption {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.UserOption(nil), c.adminUsers...)
}

// BulletinUsers returns the active-user roster from the session context.
func (c *Controller) BulletinUsers() []models.UserOption {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.UserOption(nil), c.bulletinUsers...)
}
