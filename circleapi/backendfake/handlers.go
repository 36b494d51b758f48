package backendfake

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"golang.org/x/crypto/bcrypt"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)
type authedFunc func(w http.ResponseWriter, r *http.Request, acc *account)

func (b *Backend) routes() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h handlerFunc) {
		method, path, _ := strings.Cut(pattern, " ")
		mux.HandleFunc(method+" "+apiPrefix+path, func(w http.ResponseWriter, r *http.Request) {
			if b.record(w, r) {
				return
			}
			h(w, r)
		})
	}

	handle("GET /{$}", b.health)

	handle("POST /auth/telegram/", b.telegramAuth)
	handle("POST /auth/refresh/", b.refresh)
	handle("POST /auth/logout/", b.authed(b.logout))
	handle("GET /auth/me/", b.authed(b.me))

	handle("POST /users/register/", b.register)
	handle("POST /users/login/", b.login)
	handle("GET /users/spheres/", list(b, func() []circlemodel.Sphere { return b.spheres }))
	handle("GET /users/spheres/{id}/specializations/", b.sphereSpecializations)
	handle("GET /users/specializations/", list(b, func() []circlemodel.Specialization { return b.specializations }))
	handle("GET /users/activity-types/", list(b, func() []circlemodel.ActivityType { return b.activityTypes }))
	handle("GET /users/destinations/", list(b, func() []circlemodel.Destination { return b.destinations }))
	handle("GET /users/trip-formats/", list(b, func() []circlemodel.TripFormat { return b.tripFormats }))
	handle("GET /users/travel-styles/", list(b, func() []circlemodel.TravelStyle { return b.travelStyles }))
	handle("GET /users/travel-locations/", list(b, func() []circlemodel.TravelLocation { return b.travelLocations }))
	handle("GET /users/trip-durations/", list(b, func() []circlemodel.TripDuration { return b.tripDurations }))
	handle("PATCH /users/users/select_sphere/", b.authed(b.selectSphere))
	handle("PATCH /users/users/select_preferences/", b.authed(b.selectPreferences))

	handle("GET /tours/categories/", list(b, func() []circlemodel.TourCategory { return b.categories }))
	handle("GET /tours/tours/", b.optionalAuth(b.listTours))
	handle("GET /tours/tours/{id}/", b.optionalAuth(b.getTour))
	handle("POST /tours/tours/{id}/toggle_wishlist/", b.authed(b.toggleWishlist))
	handle("DELETE /tours/tours/{id}/remove_from_wishlist/", b.authed(b.removeFromWishlist))
	handle("GET /tours/wishlist/", b.authed(b.wishlist))
	handle("DELETE /tours/wishlist/clear/", b.authed(b.clearWishlist))

	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, field, msg string) {
	writeJSON(w, status, map[string]string{field: msg})
}

func bearer(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return token
}

// authenticate returns nil, nil without credentials and an error for bad ones.
func (b *Backend) authenticate(r *http.Request) (*account, error) {
	raw := bearer(r)
	if raw == "" {
		return nil, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c, err := b.parseLocked(raw, tokenTypeAccess)
	if err != nil {
		return nil, err
	}
	acc, ok := b.accounts[c.UserID]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return acc, nil
}

func (b *Backend) authed(h authedFunc) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, err := b.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "detail", "Given token not valid for any token type")
			return
		}
		if acc == nil {
			writeError(w, http.StatusUnauthorized, "detail", "Authentication credentials were not provided.")
			return
		}
		h(w, r, acc)
	}
}

func (b *Backend) optionalAuth(h authedFunc) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, err := b.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "detail", "Given token not valid for any token type")
			return
		}
		h(w, r, acc)
	}
}

func list[T any](b *Backend, items func() []T) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		all := append([]T(nil), items()...)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, paginate(r, all))
	}
}

func paginate[T any](r *http.Request, items []T) circlemodel.Page[T] {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	start := min((page-1)*pageSize, len(items))
	end := min(start+pageSize, len(items))

	out := circlemodel.Page[T]{Count: len(items), Results: items[start:end]}
	if out.Results == nil {
		out.Results = []T{}
	}
	link := func(p int) *string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(p))
		s := "http://" + r.Host + r.URL.Path + "?" + q.Encode()
		return &s
	}
	if end < len(items) {
		out.Next = link(page + 1)
	}
	if page > 1 {
		out.Previous = link(page - 1)
	}
	return out
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

func (b *Backend) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "circle-backend",
		"version": "1.0.0",
	})
}

func (b *Backend) authResponseLocked(acc *account, isNew bool, message string) circlemodel.AuthResponse {
	return circlemodel.AuthResponse{
		Message:            message,
		User:               acc.user,
		Tokens:             b.issueLocked(acc.user.ID),
		IsNewUser:          isNew,
		OnboardingRequired: !acc.user.OnboardingCompleted,
	}
}

func (b *Backend) telegramAuth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InitData string `json:"init_data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InitData == "" {
		writeError(w, http.StatusBadRequest, "error", "init_data is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tgUser, err := verifyInitData(req.InitData, b.botToken, b.debug, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "error", err.Error())
		return
	}

	for _, acc := range b.accounts {
		if acc.user.TelegramID == tgUser.ID {
			if tgUser.FirstName != "" {
				acc.user.FirstName = tgUser.FirstName
			}
			writeJSON(w, http.StatusOK, b.authResponseLocked(acc, false, "Successful login"))
			return
		}
	}

	username := tgUser.Username
	if username == "" {
		username = fmt.Sprintf("tg_%d", tgUser.ID)
	}
	acc := b.addUserLocked(circlemodel.User{
		Username:   username,
		FirstName:  tgUser.FirstName,
		LastName:   tgUser.LastName,
		TelegramID: tgUser.ID,
	}, "")
	writeJSON(w, http.StatusCreated, b.authResponseLocked(acc, true, "User created"))
}

func (b *Backend) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		writeError(w, http.StatusBadRequest, "refresh", "This field is required.")
		return
	}

	b.mu.Lock()
	delay := b.refreshDelay
	b.mu.Unlock()
	time.Sleep(delay)

	b.mu.Lock()
	defer b.mu.Unlock()

	c, err := b.parseLocked(req.Refresh, tokenTypeRefresh)
	if err != nil || b.failRefresh {
		writeError(w, http.StatusUnauthorized, "detail", "Token is invalid or expired")
		return
	}

	out := map[string]string{"access": b.signLocked(c.UserID, tokenTypeAccess, accessTokenTTL)}
	if b.rotateRefresh {
		b.revoked[c.ID] = true
		out["refresh"] = b.signLocked(c.UserID, tokenTypeRefresh, refreshTokenTTL)
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) logout(w http.ResponseWriter, r *http.Request, _ *account) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "error", "refresh is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	c, err := b.parseLocked(req.Refresh, tokenTypeRefresh)
	if err != nil {
		writeError(w, http.StatusBadRequest, "error", "Invalid token")
		return
	}
	b.revoked[c.ID] = true
	writeJSON(w, http.StatusOK, circlemodel.Message{Message: "Successfully logged out"})
}

func (b *Backend) me(w http.ResponseWriter, _ *http.Request, acc *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, acc.user)
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req circlemodel.RegisterData
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "error", "invalid body")
		return
	}
	switch {
	case req.Username == "" || req.FirstName == "" || req.LastName == "" || req.PhoneNumber == "":
		writeError(w, http.StatusBadRequest, "error", "Required fields are missing")
		return
	case req.Password != req.PasswordConfirm:
		writeError(w, http.StatusBadRequest, "error", "Passwords do not match")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, acc := range b.accounts {
		if acc.user.PhoneNumber == req.PhoneNumber {
			writeError(w, http.StatusBadRequest, "error", "User with this phone number already exists")
			return
		}
	}

	acc := b.addUserLocked(circlemodel.User{
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
	}, req.Password)
	writeJSON(w, http.StatusCreated, b.authResponseLocked(acc, true, "User registered"))
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req circlemodel.LoginData
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Login == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "error", "Login and password are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, acc := range b.accounts {
		if acc.user.PhoneNumber != req.Login && (acc.user.Email == "" || acc.user.Email != req.Login) {
			continue
		}
		if acc.passwordHash == nil || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
			break
		}
		writeJSON(w, http.StatusOK, b.authResponseLocked(acc, false, "Successful login"))
		return
	}
	writeError(w, http.StatusBadRequest, "error", "Invalid login or password")
}

func (b *Backend) sphereSpecializations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "detail", "Not found.")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []circlemodel.Specialization{}
	for _, s := range b.specializations {
		if s.Sphere.ID == id {
			out = append(out, s)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) selectSphere(w http.ResponseWriter, r *http.Request, acc *account) {
	var req circlemodel.SphereSelection
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "error", "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	var sphere *circlemodel.Sphere
	for i := range b.spheres {
		if b.spheres[i].ID == req.Sphere {
			sphere = &b.spheres[i]
		}
	}
	if sphere == nil {
		writeError(w, http.StatusBadRequest, "error", "Sphere not found")
		return
	}
	var spec *circlemodel.Specialization
	if req.Specialization != nil {
		for i := range b.specializations {
			if b.specializations[i].ID == *req.Specialization && b.specializations[i].Sphere.ID == sphere.ID {
				spec = &b.specializations[i]
			}
		}
		if spec == nil {
			writeError(w, http.StatusBadRequest, "error", "Specialization does not belong to the sphere")
			return
		}
	}
	acc.user.Sphere = sphere
	acc.user.Specialization = spec
	acc.user.SphereSelected = true
	writeJSON(w, http.StatusOK, circlemodel.UserUpdate{Message: "Sphere selected", User: acc.user})
}

func pick[T any](all []T, ids []int64, id func(T) int64) []T {
	var out []T
	for _, item := range all {
		for _, want := range ids {
			if id(item) == want {
				out = append(out, item)
			}
		}
	}
	return out
}

func (b *Backend) selectPreferences(w http.ResponseWriter, r *http.Request, acc *account) {
	var req circlemodel.PreferencesSelection
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "error", "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u := &acc.user
	u.PreferredActivities = pick(b.activityTypes, req.PreferredActivities, func(v circlemodel.ActivityType) int64 { return v.ID })
	u.PreferredDestinations = pick(b.destinations, req.PreferredDestinations, func(v circlemodel.Destination) int64 { return v.ID })
	u.PreferredTripFormats = pick(b.tripFormats, req.PreferredTripFormats, func(v circlemodel.TripFormat) int64 { return v.ID })
	u.PreferredTravelStyles = pick(b.travelStyles, req.PreferredTravelStyles, func(v circlemodel.TravelStyle) int64 { return v.ID })
	u.PreferredTravelLocations = pick(b.travelLocations, req.PreferredTravelLocations, func(v circlemodel.TravelLocation) int64 { return v.ID })
	u.PreferredTripDurations = pick(b.tripDurations, req.PreferredTripDurations, func(v circlemodel.TripDuration) int64 { return v.ID })
	u.PreferencesSelected = true
	u.OnboardingCompleted = u.SphereSelected
	writeJSON(w, http.StatusOK, circlemodel.UserUpdate{
		Message:             "Preferences saved",
		User:                *u,
		OnboardingCompleted: u.OnboardingCompleted,
	})
}

func (b *Backend) decorateLocked(t circlemodel.Tour, acc *account) circlemodel.Tour {
	t.IsWishlisted = acc != nil && b.wishlists[acc.user.ID][t.ID]
	return t
}

func (b *Backend) listTours(w http.ResponseWriter, r *http.Request, acc *account) {
	q := r.URL.Query()
	category, _ := strconv.ParseInt(q.Get("type"), 10, 64)
	priceMin, _ := strconv.ParseFloat(q.Get("price_min"), 64)
	priceMax, _ := strconv.ParseFloat(q.Get("price_max"), 64)
	search := strings.ToLower(q.Get("search"))

	b.mu.Lock()
	out := []circlemodel.Tour{}
	for _, t := range b.tours {
		if category > 0 && (t.Category == nil || t.Category.ID != category) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) && !strings.Contains(t.Slug, search) {
			continue
		}
		if b.honourPriceFilter && ((priceMin > 0 && t.PriceFrom < priceMin) || (priceMax > 0 && t.PriceFrom > priceMax)) {
			continue
		}
		out = append(out, b.decorateLocked(t, acc))
	}
	b.mu.Unlock()

	switch q.Get("ordering") {
	case "price_from":
		sort.SliceStable(out, func(i, j int) bool { return out[i].PriceFrom < out[j].PriceFrom })
	case "-price_from":
		sort.SliceStable(out, func(i, j int) bool { return out[i].PriceFrom > out[j].PriceFrom })
	}
	writeJSON(w, http.StatusOK, paginate(r, out))
}

func (b *Backend) findTourLocked(r *http.Request) (circlemodel.Tour, bool) {
	id, ok := pathID(r)
	if !ok {
		return circlemodel.Tour{}, false
	}
	for _, t := range b.tours {
		if t.ID == id {
			return t, true
		}
	}
	return circlemodel.Tour{}, false
}

func (b *Backend) getTour(w http.ResponseWriter, r *http.Request, acc *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.findTourLocked(r)
	if !ok {
		writeError(w, http.StatusNotFound, "detail", "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, b.decorateLocked(t, acc))
}

func (b *Backend) toggleWishlist(w http.ResponseWriter, r *http.Request, acc *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.findTourLocked(r)
	if !ok {
		writeError(w, http.StatusNotFound, "detail", "Not found.")
		return
	}
	if b.wishlists[acc.user.ID] == nil {
		b.wishlists[acc.user.ID] = map[int64]bool{}
	}
	on := !b.wishlists[acc.user.ID][t.ID]
	if on {
		b.wishlists[acc.user.ID][t.ID] = true
		writeJSON(w, http.StatusOK, circlemodel.WishlistToggle{IsWishlisted: true, Message: "Tour added to wishlist"})
		return
	}
	delete(b.wishlists[acc.user.ID], t.ID)
	writeJSON(w, http.StatusOK, circlemodel.WishlistToggle{IsWishlisted: false, Message: "Tour removed from wishlist"})
}

func (b *Backend) removeFromWishlist(w http.ResponseWriter, r *http.Request, acc *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.findTourLocked(r)
	if !ok || !b.wishlists[acc.user.ID][t.ID] {
		writeError(w, http.StatusNotFound, "error", "Tour is not in wishlist")
		return
	}
	delete(b.wishlists[acc.user.ID], t.ID)
	writeJSON(w, http.StatusOK, circlemodel.Message{Message: "Tour removed from wishlist"})
}

func (b *Backend) wishlist(w http.ResponseWriter, _ *http.Request, acc *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := circlemodel.WishlistPage{Results: []circlemodel.Tour{}}
	for _, t := range b.tours {
		if b.wishlists[acc.user.ID][t.ID] {
			out.Results = append(out.Results, b.decorateLocked(t, acc))
		}
	}
	out.Count = len(out.Results)
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) clearWishlist(w http.ResponseWriter, _ *http.Request, acc *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.wishlists, acc.user.ID)
	writeJSON(w, http.StatusOK, circlemodel.Message{Message: "Wishlist cleared"})
}
