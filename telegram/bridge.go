package telegram

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Bridge answers questions about one launch. Fallback init data is only used
// when dev is set and the platform supplied none.
type Bridge struct {
	launch   Launch
	fallback string
	dev      bool
}

func NewBridge(launch Launch, fallback string, dev bool) *Bridge {
	return &Bridge{launch: launch, fallback: fallback, dev: dev}
}

// Launch returns the snapshot the bridge was built from.
func (b *Bridge) Launch() Launch {
	return b.launch
}

// IsAvailable reports whether the Telegram SDK object exists in the page.
func (b *Bridge) IsAvailable() bool {
	return b.launch.Available
}

func (b *Bridge) InitData() string {
	if b.launch.InitData != "" {
		return b.launch.InitData
	}
	if b.dev {
		return b.fallback
	}
	return ""
}

func (b *Bridge) UsingTestData() bool {
	return b.launch.InitData == "" && b.dev && b.fallback != ""
}

func (b *Bridge) Platform() string {
	if b.launch.Platform == "" {
		return DefaultPlatform
	}
	return b.launch.Platform
}

func (b *Bridge) Version() string {
	if b.launch.Version == "" {
		return DefaultVersion
	}
	return b.launch.Version
}

func (b *Bridge) ColorScheme() string {
	return b.launch.ColorScheme
}

func (b *Bridge) ThemeParams() map[string]string {
	return b.launch.ThemeParams
}

// IsInTelegram requires the SDK, a payload and a platform or version that is
// not the SDK's placeholder.
func (b *Bridge) IsInTelegram() bool {
	return b.IsAvailable() &&
		b.InitData() != "" &&
		(b.Platform() != DefaultPlatform || b.Version() != DefaultVersion)
}

// HasSignedPayload gates silent auto-login.
func (b *Bridge) HasSignedPayload() bool {
	initData := b.InitData()
	return len(initData) > 50 && strings.Contains(initData, "hash=")
}

func (b *Bridge) InitDataUnsafe() InitDataUnsafe {
	out, _ := ParseInitData(b.InitData())
	return out
}

// User prefers the client's unsigned hint and falls back to the payload.
func (b *Bridge) User() *User {
	if len(b.launch.User) > 0 {
		var u User
		if err := json.Unmarshal(b.launch.User, &u); err == nil && u.ID != 0 {
			return &u
		}
	}
	return b.InitDataUnsafe().User
}

func (b *Bridge) IsVersionAtLeast(version string) bool {
	return CompareVersions(b.Version(), version) >= 0
}

// CompareVersions compares dotted versions numerically. Missing or
// non-numeric parts count as zero.
func CompareVersions(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")
	for i := 0; i < max(len(aParts), len(bParts)); i++ {
		av, bv := part(aParts, i), part(bParts, i)
		switch {
		case av > bv:
			return 1
		case av < bv:
			return -1
		}
	}
	return 0
}

func part(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, _ := strconv.Atoi(parts[i])
	return n
}
