// Package backendfake runs an in-process stand-in for the Circle REST backend.
// Tests point a circleapi.Client at Backend.URL and script failures through
// the exported hooks.
package backendfake

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"golang.org/x/crypto/bcrypt"
)

const (
	apiPrefix = "/api/v1"
	pageSize  = 10

	DefaultBotToken = "123456:TEST-BOT-TOKEN"
)

type account struct {
	user         circlemodel.User
	passwordHash []byte
}

// Backend holds all fake state behind a single mutex.
type Backend struct {
	server   *httptest.Server
	botToken string
	secret   []byte

	mu         sync.Mutex
	accounts   map[int64]*account
	nextUserID int64
	wishlists  map[int64]map[int64]bool
	revoked    map[string]bool
	generation int
	requests   map[string]int
	scripted   map[string]scriptedResponse

	spheres         []circlemodel.Sphere
	specializations []circlemodel.Specialization
	activityTypes   []circlemodel.ActivityType
	destinations    []circlemodel.Destination
	tripFormats     []circlemodel.TripFormat
	travelStyles    []circlemodel.TravelStyle
	travelLocations []circlemodel.TravelLocation
	tripDurations   []circlemodel.TripDuration
	categories      []circlemodel.TourCategory
	tours           []circlemodel.Tour

	failRefresh       bool
	rotateRefresh     bool
	refreshDelay      time.Duration
	honourPriceFilter bool
	debug             bool
}

type scriptedResponse struct {
	status int
	body   any
}

// New starts a fake backend seeded with reference data and five tours. It is
// closed when the test ends.
func New(t testing.TB) *Backend {
	b := &Backend{
		botToken:   DefaultBotToken,
		secret:     []byte("backendfake-signing-key"),
		accounts:   map[int64]*account{},
		nextUserID: 1,
		wishlists:  map[int64]map[int64]bool{},
		revoked:    map[string]bool{},
		requests:   map[string]int{},
		scripted:   map[string]scriptedResponse{},
		debug:      true,
	}
	b.seed()
	b.server = httptest.NewServer(b.routes())
	t.Cleanup(b.server.Close)
	return b
}

// URL is the API base URL, including the version prefix.
func (b *Backend) URL() string {
	return b.server.URL + apiPrefix
}

func (b *Backend) BotToken() string {
	return b.botToken
}

// AddUser registers an account and returns it with its assigned id.
func (b *Backend) AddUser(u circlemodel.User, password string) circlemodel.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(u, password).user
}

func (b *Backend) addUserLocked(u circlemodel.User, password string) *account {
	u.ID = b.nextUserID
	b.nextUserID++
	acc := &account{user: u}
	if password != "" {
		// MinCost keeps the tests quick
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		acc.passwordHash = hash
	}
	b.accounts[u.ID] = acc
	return acc
}

// User returns the current server-side record of a user.
func (b *Backend) User(id int64) (circlemodel.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[id]
	if !ok {
		return circlemodel.User{}, false
	}
	return acc.user, true
}

// IssueTokens mints a token pair for an existing user.
func (b *Backend) IssueTokens(userID int64) circlemodel.AuthTokens {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueLocked(userID)
}

// ExpireAccessTokens invalidates every access token issued so far. Refresh
// tokens keep working.
func (b *Backend) ExpireAccessTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++
}

// FailRefresh makes the refresh endpoint reject every token.
func (b *Backend) FailRefresh(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failRefresh = fail
}

// RotateRefreshTokens makes refresh return a new refresh token too.
func (b *Backend) RotateRefreshTokens(rotate bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rotateRefresh = rotate
}

// SetRefreshDelay slows the refresh endpoint down so concurrent callers overlap.
func (b *Backend) SetRefreshDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshDelay = d
}

// HonourPriceFilter controls whether price_min/price_max are applied
// server-side. They are ignored by default.
func (b *Backend) HonourPriceFilter(honour bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.honourPriceFilter = honour
}

// SetDebug controls whether query_id=test payloads skip signature checks.
func (b *Backend) SetDebug(debug bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.debug = debug
}

func (b *Backend) SetTours(tours []circlemodel.Tour) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tours = tours
}

// Script makes every call to method+path answer with status and body until
// Unscript is called. path is relative to the API prefix.
func (b *Backend) Script(method, path string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scripted[method+" "+path] = scriptedResponse{status: status, body: body}
}

func (b *Backend) Unscript(method, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.scripted, method+" "+path)
}

// Requests counts calls to method+path, path relative to the API prefix.
func (b *Backend) Requests(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[method+" "+path]
}

func (b *Backend) TotalRequests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.requests {
		total += n
	}
	return total
}

func (b *Backend) Wishlisted(userID, tourID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.wishlists[userID][tourID]
}

// record counts the request and answers scripted responses. It reports
// whether the request was handled.
func (b *Backend) record(w http.ResponseWriter, r *http.Request) bool {
	key := r.Method + " " + strings.TrimPrefix(r.URL.Path, apiPrefix)

	b.mu.Lock()
	b.requests[key]++
	scripted, ok := b.scripted[key]
	b.mu.Unlock()

	if ok {
		writeJSON(w, scripted.status, scripted.body)
	}
	return ok
}
