package circlemodel_test

import (
	"testing"

	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"github.com/stretchr/testify/require"
)

func TestNextOnboardingRoute(t *testing.T) {
	tests := []struct {
		name string
		user *circlemodel.User
		want string
	}{
		{"nil user", nil, circlemodel.RouteHome},
		{"fresh", &circlemodel.User{}, circlemodel.RouteOnboardingSphere},
		{"sphere picked", &circlemodel.User{SphereSelected: true}, circlemodel.RouteOnboardingPreferences},
		{"both picked", &circlemodel.User{SphereSelected: true, PreferencesSelected: true}, circlemodel.RouteHome},
		{"completed flag wins", &circlemodel.User{OnboardingCompleted: true}, circlemodel.RouteHome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.user.NextOnboardingRoute())
			require.Equal(t, tt.want != circlemodel.RouteHome, tt.user.NeedsOnboarding())
		})
	}
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "Aziz Karimov", (&circlemodel.User{FirstName: "Aziz", LastName: "Karimov", Username: "aziz"}).DisplayName())
	require.Equal(t, "aziz", (&circlemodel.User{Username: "aziz"}).DisplayName())
	require.Equal(t, "AK", (&circlemodel.User{FirstName: "Aziz", LastName: "Karimov"}).Initials())
}

func TestActiveSessions(t *testing.T) {
	tour := circlemodel.Tour{Sessions: []circlemodel.TourSession{{ID: 1, IsActive: true}, {ID: 2}, {ID: 3, IsActive: true}}}
	active := tour.ActiveSessions()
	require.Len(t, active, 2)
	require.Equal(t, int64(3), active[1].ID)
}

func TestFormatPrice(t *testing.T) {
	for in, want := range map[float64]string{
		0:         "0",
		999:       "999",
		1000:      "1 000",
		1500000:   "1 500 000",
		249999.6:  "250 000",
		-12345:    "-12 345",
		100000000: "100 000 000",
	} {
		require.Equal(t, want, circlemodel.FormatPrice(in))
	}
}
