package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/CH4P4R/thumb-compare/internal/model"
	"github.com/CH4P4R/thumb-compare/internal/repository"
	"github.com/CH4P4R/thumb-compare/internal/youtube"
)

// ---- fakes -----------------------------------------------------------------

type fakeSource struct {
	channelVideos  map[string][]youtube.Video
	channelErr     map[string]error
	trendingVideos map[string][]youtube.Video
	trendingErr    map[string]error

	channelCalls  []string
	trendingCalls []string
}

func (f *fakeSource) ChannelVideos(_ context.Context, channelID string, _ int) ([]youtube.Video, error) {
	f.channelCalls = append(f.channelCalls, channelID)
	if err := f.channelErr[channelID]; err != nil {
		return nil, err
	}
	return f.channelVideos[channelID], nil
}

func (f *fakeSource) TrendingVideos(_ context.Context, regionCode string, _ int) ([]youtube.Video, error) {
	f.trendingCalls = append(f.trendingCalls, regionCode)
	if err := f.trendingErr[regionCode]; err != nil {
		return nil, err
	}
	return f.trendingVideos[regionCode], nil
}

type fakeChannelStore struct {
	channels     []model.CompetitorChannel
	listErr      error
	titleUpdates map[string]string
}

func (f *fakeChannelStore) List(context.Context) ([]model.CompetitorChannel, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.channels, nil
}

func (f *fakeChannelStore) Get(_ context.Context, id string) (*model.CompetitorChannel, error) {
	for i := range f.channels {
		if f.channels[i].ID == id {
			return &f.channels[i], nil
		}
	}
	return nil, errors.New("competitor not found")
}

func (f *fakeChannelStore) UpdateTitle(_ context.Context, id, title string) error {
	if f.titleUpdates == nil {
		f.titleUpdates = make(map[string]string)
	}
	f.titleUpdates[id] = title
	return nil
}

// fakeSnapshotStore applies the real upsert plan to an in-memory row set so
// the tests exercise the same reconciliation semantics as the SQL layer.
type fakeSnapshotStore struct {
	rows      map[string]map[string]youtube.Video // competitorID -> ytVideoID -> snapshot
	upsertErr map[string]error
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{rows: make(map[string]map[string]youtube.Video)}
}

func (f *fakeSnapshotStore) UpsertChannelVideos(_ context.Context, competitorID string, videos []youtube.Video) (int, int, error) {
	if err := f.upsertErr[competitorID]; err != nil {
		return 0, 0, err
	}
	if f.rows[competitorID] == nil {
		f.rows[competitorID] = make(map[string]youtube.Video)
	}

	existing := make(map[string]struct{})
	for id := range f.rows[competitorID] {
		existing[id] = struct{}{}
	}

	plan := repository.BuildUpsertPlan(existing, videos)
	for _, v := range plan.Inserts {
		f.rows[competitorID][v.ID] = v
	}
	for _, v := range plan.Updates {
		prev := f.rows[competitorID][v.ID]
		prev.Title = v.Title
		prev.ThumbnailURL = v.ThumbnailURL
		prev.ViewCount = v.ViewCount
		prev.LikeCount = v.LikeCount
		prev.CommentCount = v.CommentCount
		f.rows[competitorID][v.ID] = prev
	}
	return len(plan.Inserts), len(plan.Updates), nil
}

type fakeProjectStore struct {
	projects []model.Project
	listErr  error
}

func (f *fakeProjectStore) List(context.Context) ([]model.Project, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.projects, nil
}

func (f *fakeProjectStore) Get(_ context.Context, id string) (*model.Project, error) {
	for i := range f.projects {
		if f.projects[i].ID == id {
			return &f.projects[i], nil
		}
	}
	return nil, errors.New("project not found")
}

type fakeTrendingStore struct {
	sets         map[string][]string // projectID|region -> ytVideoIDs
	replaceErr   map[string]error    // keyed by projectID
	replaceCalls int
}

func newFakeTrendingStore() *fakeTrendingStore {
	return &fakeTrendingStore{sets: make(map[string][]string)}
}

func (f *fakeTrendingStore) ReplaceSet(_ context.Context, projectID, regionCode string, videos []youtube.Video) (int, error) {
	f.replaceCalls++
	if err := f.replaceErr[projectID]; err != nil {
		return 0, err
	}
	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	f.sets[projectID+"|"+regionCode] = ids
	return len(videos), nil
}

type fakeRunLog struct {
	records   []model.RunRecord
	appendErr error
}

func (f *fakeRunLog) Append(_ context.Context, rec model.RunRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.records = append(f.records, rec)
	return nil
}

type fakeInvalidator struct {
	competitors []string
	projects    []string
}

func (f *fakeInvalidator) InvalidateCompetitor(_ context.Context, id string) error {
	f.competitors = append(f.competitors, id)
	return nil
}

func (f *fakeInvalidator) InvalidateTrending(_ context.Context, id string) error {
	f.projects = append(f.projects, id)
	return nil
}

// ---- helpers ---------------------------------------------------------------

type runnerFixture struct {
	source   *fakeSource
	channels *fakeChannelStore
	videos   *fakeSnapshotStore
	projects *fakeProjectStore
	trending *fakeTrendingStore
	runLog   *fakeRunLog
	cache    *fakeInvalidator
	runner   *Runner
}

func newFixture() *runnerFixture {
	f := &runnerFixture{
		source: &fakeSource{
			channelVideos:  make(map[string][]youtube.Video),
			channelErr:     make(map[string]error),
			trendingVideos: make(map[string][]youtube.Video),
			trendingErr:    make(map[string]error),
		},
		channels: &fakeChannelStore{},
		videos:   newFakeSnapshotStore(),
		projects: &fakeProjectStore{},
		trending: newFakeTrendingStore(),
		runLog:   &fakeRunLog{},
		cache:    &fakeInvalidator{},
	}
	f.runner = NewRunner(
		f.source, f.channels, f.videos, f.projects, f.trending,
		f.runLog, f.cache, 25, 50, zerolog.Nop(),
	)
	return f
}

func channel(id, ytID, title string) model.CompetitorChannel {
	return model.CompetitorChannel{ID: id, ProjectID: "P1", YTChannelID: ytID, ChannelTitle: title}
}

func video(id string, views int64) youtube.Video {
	return youtube.Video{ID: id, Title: "video " + id, ViewCount: views}
}

// ---- competitor refresh ----------------------------------------------------

func TestRefreshCompetitors_AllUnitsSucceed(t *testing.T) {
	f := newFixture()
	f.channels.channels = []model.CompetitorChannel{
		channel("c1", "UC1", "Alpha"),
		channel("c2", "UC2", "Beta"),
	}
	f.source.channelVideos["UC1"] = []youtube.Video{video("v1", 10), video("v2", 20)}
	f.source.channelVideos["UC2"] = []youtube.Video{video("v3", 30)}

	summary, err := f.runner.RefreshCompetitors(context.Background())
	if err != nil {
		t.Fatalf("RefreshCompetitors() error = %v", err)
	}

	if summary.Status != model.RunCompleted {
		t.Errorf("status = %s, want %s", summary.Status, model.RunCompleted)
	}
	if summary.UnitsProcessed != 2 {
		t.Errorf("unitsProcessed = %d, want 2", summary.UnitsProcessed)
	}
	if got := summary.Results[0].ItemsCount; got != 2 {
		t.Errorf("unit 1 itemsCount = %d, want 2", got)
	}
	if len(f.runLog.records) != 2 {
		t.Fatalf("run records = %d, want 2 (one per unit)", len(f.runLog.records))
	}
	for _, rec := range f.runLog.records {
		if rec.Status != model.UnitOK || rec.Type != model.RunCompetitorRefresh {
			t.Errorf("record = %s/%s, want %s/ok", rec.Type, rec.Status, model.RunCompetitorRefresh)
		}
	}
	if len(f.videos.rows["c1"]) != 2 || len(f.videos.rows["c2"]) != 1 {
		t.Errorf("stored rows = %d/%d, want 2/1", len(f.videos.rows["c1"]), len(f.videos.rows["c2"]))
	}
}

func TestRefreshCompetitors_UnitFailureDoesNotAbortBatch(t *testing.T) {
	f := newFixture()
	f.channels.channels = []model.CompetitorChannel{
		channel("c1", "UC1", "Alpha"),
		channel("c2", "UC2", "Beta"),
		channel("c3", "UC3", "Gamma"),
	}
	f.source.channelVideos["UC1"] = []youtube.Video{video("v1", 1)}
	f.source.channelErr["UC2"] = youtube.ErrSourceUnavailable
	f.source.channelVideos["UC3"] = []youtube.Video{video("v9", 9)}

	summary, err := f.runner.RefreshCompetitors(context.Background())
	if err != nil {
		t.Fatalf("RefreshCompetitors() error = %v", err)
	}

	if summary.Status != model.RunPartiallyFailed {
		t.Errorf("status = %s, want %s", summary.Status, model.RunPartiallyFailed)
	}
	wantStatuses := []model.UnitStatus{model.UnitOK, model.UnitError, model.UnitOK}
	for i, want := range wantStatuses {
		if summary.Results[i].Status != want {
			t.Errorf("unit %d status = %s, want %s", i+1, summary.Results[i].Status, want)
		}
	}
	// All three channels were attempted.
	if len(f.source.channelCalls) != 3 {
		t.Errorf("channel fetches = %d, want 3", len(f.source.channelCalls))
	}
	// The failing unit's record carries the error message.
	if rec := f.runLog.records[1]; rec.Status != model.UnitError || rec.Detail.Error == "" {
		t.Errorf("failed unit record = %+v, want error status with message", rec)
	}
}

func TestRefreshCompetitors_EnumerationFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.channels.listErr = errors.New("connection refused")

	summary, err := f.runner.RefreshCompetitors(context.Background())
	if err == nil {
		t.Fatal("RefreshCompetitors() error = nil, want enumeration failure")
	}
	if summary != nil {
		t.Errorf("summary = %+v, want nil on fatal failure", summary)
	}
	if len(f.runLog.records) != 0 {
		t.Errorf("run records = %d, want 0 when the run never starts", len(f.runLog.records))
	}
}

func TestRefreshCompetitors_AuditFailureDoesNotChangeOutcome(t *testing.T) {
	f := newFixture()
	f.channels.channels = []model.CompetitorChannel{channel("c1", "UC1", "Alpha")}
	f.source.channelVideos["UC1"] = []youtube.Video{video("v1", 1)}
	f.runLog.appendErr = errors.New("audit store down")

	summary, err := f.runner.RefreshCompetitors(context.Background())
	if err != nil {
		t.Fatalf("RefreshCompetitors() error = %v", err)
	}

	if summary.Status != model.RunCompleted {
		t.Errorf("status = %s, want %s (audit failures are best-effort)", summary.Status, model.RunCompleted)
	}
	if summary.Results[0].Status != model.UnitOK {
		t.Errorf("unit status = %s, want ok", summary.Results[0].Status)
	}
	// The reconciliation still committed.
	if len(f.videos.rows["c1"]) != 1 {
		t.Errorf("stored rows = %d, want 1", len(f.videos.rows["c1"]))
	}
}

// 3 videos on run 1, then 2 of them with fresh metrics on run 2. All 3 rows
// survive, the dropped one untouched.
func TestRefreshCompetitors_ShrunkenFetchKeepsBackCatalog(t *testing.T) {
	f := newFixture()
	f.channels.channels = []model.CompetitorChannel{channel("c1", "UC1", "Alpha")}

	f.source.channelVideos["UC1"] = []youtube.Video{video("v1", 100), video("v2", 200), video("v3", 300)}
	if _, err := f.runner.RefreshCompetitors(context.Background()); err != nil {
		t.Fatalf("run 1 error = %v", err)
	}

	f.source.channelVideos["UC1"] = []youtube.Video{video("v2", 250), video("v3", 350)}
	if _, err := f.runner.RefreshCompetitors(context.Background()); err != nil {
		t.Fatalf("run 2 error = %v", err)
	}

	rows := f.videos.rows["c1"]
	if len(rows) != 3 {
		t.Fatalf("rows after run 2 = %d, want 3", len(rows))
	}
	if rows["v1"].ViewCount != 100 {
		t.Errorf("v1 viewCount = %d, want 100 (absent from fetch, untouched)", rows["v1"].ViewCount)
	}
	if rows["v2"].ViewCount != 250 || rows["v3"].ViewCount != 350 {
		t.Errorf("metrics = v2:%d v3:%d, want 250/350", rows["v2"].ViewCount, rows["v3"].ViewCount)
	}
}

func TestRefreshCompetitors_RerunIsIdempotent(t *testing.T) {
	f := newFixture()
	f.channels.channels = []model.CompetitorChannel{channel("c1", "UC1", "Alpha")}
	f.source.channelVideos["UC1"] = []youtube.Video{video("v1", 1), video("v2", 2)}

	if _, err := f.runner.RefreshCompetitors(context.Background()); err != nil {
		t.Fatalf("run 1 error = %v", err)
	}
	after1 := len(f.videos.rows["c1"])

	if _, err := f.runner.RefreshCompetitors(context.Background()); err != nil {
		t.Fatalf("run 2 error = %v", err)
	}
	after2 := len(f.videos.rows["c1"])

	if after1 != after2 {
		t.Errorf("row count after run 2 = %d, want %d (no duplicates)", after2, after1)
	}
}

func TestRefreshCompetitor_SingleUnit(t *testing.T) {
	f := newFixture()
	f.channels.channels = []model.CompetitorChannel{
		channel("c1", "UC1", "Alpha"),
		channel("c2", "UC2", "Beta"),
	}
	f.source.channelVideos["UC2"] = []youtube.Video{video("v5", 5)}

	summary, err := f.runner.RefreshCompetitor(context.Background(), "c2")
	if err != nil {
		t.Fatalf("RefreshCompetitor() error = %v", err)
	}

	if summary.UnitsProcessed != 1 {
		t.Errorf("unitsProcessed = %d, want 1", summary.UnitsProcessed)
	}
	if len(f.source.channelCalls) != 1 || f.source.channelCalls[0] != "UC2" {
		t.Errorf("channel calls = %v, want [UC2]", f.source.channelCalls)
	}
	if f.cache.competitors[0] != "c2" {
		t.Errorf("cache invalidations = %v, want [c2]", f.cache.competitors)
	}
}

func TestRefreshCompetitors_PicksUpChannelRename(t *testing.T) {
	f := newFixture()
	f.channels.channels = []model.CompetitorChannel{channel("c1", "UC1", "Old Name")}
	renamed := video("v1", 1)
	renamed.ChannelTitle = "New Name"
	f.source.channelVideos["UC1"] = []youtube.Video{renamed}

	summary, err := f.runner.RefreshCompetitors(context.Background())
	if err != nil {
		t.Fatalf("RefreshCompetitors() error = %v", err)
	}

	if got := f.channels.titleUpdates["c1"]; got != "New Name" {
		t.Errorf("stored title = %q, want %q", got, "New Name")
	}
	if got := summary.Results[0].ChannelTitle; got != "New Name" {
		t.Errorf("summary title = %q, want the refreshed name", got)
	}
}

func TestRefreshCompetitor_UnknownID(t *testing.T) {
	f := newFixture()

	if _, err := f.runner.RefreshCompetitor(context.Background(), "missing"); err == nil {
		t.Fatal("RefreshCompetitor() error = nil, want resolve failure")
	}
}

// ---- trending refresh ------------------------------------------------------

func TestRefreshTrending_OneFetchPerRegion(t *testing.T) {
	f := newFixture()
	f.projects.projects = []model.Project{
		project("P1", "US"),
		project("P2", "US"),
		project("P3", "TR"),
	}
	f.source.trendingVideos["US"] = []youtube.Video{video("u1", 1), video("u2", 2)}
	f.source.trendingVideos["TR"] = []youtube.Video{video("t1", 1)}

	summary, err := f.runner.RefreshTrending(context.Background())
	if err != nil {
		t.Fatalf("RefreshTrending() error = %v", err)
	}

	if len(f.source.trendingCalls) != 2 {
		t.Errorf("upstream fetches = %v, want exactly [US TR]", f.source.trendingCalls)
	}
	if f.trending.replaceCalls != 3 {
		t.Errorf("replace operations = %d, want 3 (one per project)", f.trending.replaceCalls)
	}
	if summary.Status != model.RunCompleted || summary.UnitsProcessed != 2 {
		t.Errorf("summary = %s/%d units, want completed/2", summary.Status, summary.UnitsProcessed)
	}

	for _, key := range []string{"P1|US", "P2|US"} {
		got := f.trending.sets[key]
		if len(got) != 2 || got[0] != "u1" || got[1] != "u2" {
			t.Errorf("set %s = %v, want [u1 u2]", key, got)
		}
	}
	if got := f.trending.sets["P3|TR"]; len(got) != 1 || got[0] != "t1" {
		t.Errorf("set P3|TR = %v, want [t1]", got)
	}
}

func TestRefreshTrending_ReplacesPriorSet(t *testing.T) {
	f := newFixture()
	f.projects.projects = []model.Project{project("P1", "US")}
	f.trending.sets["P1|US"] = []string{"old1", "old2", "old3"}
	f.source.trendingVideos["US"] = []youtube.Video{video("new1", 1), video("old2", 2)}

	if _, err := f.runner.RefreshTrending(context.Background()); err != nil {
		t.Fatalf("RefreshTrending() error = %v", err)
	}

	got := f.trending.sets["P1|US"]
	if len(got) != 2 || got[0] != "new1" || got[1] != "old2" {
		t.Errorf("set = %v, want exactly the new fetch [new1 old2]", got)
	}
}

func TestRefreshTrending_RegionFailureIsolated(t *testing.T) {
	f := newFixture()
	f.projects.projects = []model.Project{
		project("P1", "US"),
		project("P2", "TR"),
	}
	f.source.trendingVideos["US"] = []youtube.Video{video("u1", 1)}
	f.source.trendingErr["TR"] = youtube.ErrSourceUnavailable

	summary, err := f.runner.RefreshTrending(context.Background())
	if err != nil {
		t.Fatalf("RefreshTrending() error = %v", err)
	}

	if summary.Status != model.RunPartiallyFailed {
		t.Errorf("status = %s, want %s", summary.Status, model.RunPartiallyFailed)
	}
	if summary.Results[0].Status != model.UnitOK || summary.Results[1].Status != model.UnitError {
		t.Errorf("unit statuses = [%s %s], want [ok error]",
			summary.Results[0].Status, summary.Results[1].Status)
	}
	if rec := f.runLog.records[1]; rec.Detail.RegionCode != "TR" || rec.Detail.Error == "" {
		t.Errorf("failed record detail = %+v, want TR with error message", rec.Detail)
	}
}

func TestRefreshTrending_InvalidatesCacheAfterReplace(t *testing.T) {
	f := newFixture()
	f.projects.projects = []model.Project{
		project("P1", "US"),
		project("P2", "US"),
	}
	f.source.trendingVideos["US"] = []youtube.Video{video("u1", 1)}

	if _, err := f.runner.RefreshTrending(context.Background()); err != nil {
		t.Fatalf("RefreshTrending() error = %v", err)
	}

	if len(f.cache.projects) != 2 {
		t.Errorf("cache invalidations = %v, want one per project", f.cache.projects)
	}
}

func TestRefreshProjectTrending_SingleUnit(t *testing.T) {
	f := newFixture()
	f.projects.projects = []model.Project{project("P1", "DE")}
	f.source.trendingVideos["DE"] = []youtube.Video{video("d1", 1)}

	summary, err := f.runner.RefreshProjectTrending(context.Background(), "P1")
	if err != nil {
		t.Fatalf("RefreshProjectTrending() error = %v", err)
	}

	if summary.Status != model.RunCompleted || summary.UnitsProcessed != 1 {
		t.Errorf("summary = %s/%d, want completed/1", summary.Status, summary.UnitsProcessed)
	}
	if got := f.trending.sets["P1|DE"]; len(got) != 1 || got[0] != "d1" {
		t.Errorf("set = %v, want [d1]", got)
	}
}
