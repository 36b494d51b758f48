package backendfake

import "github.com/jrsteele09/circle-miniapp/circlemodel"

func (b *Backend) seed() {
	b.spheres = []circlemodel.Sphere{
		{ID: 1, Name: "IT", Description: "Software and technology"},
		{ID: 2, Name: "Design", Description: "Product and visual design"},
		{ID: 3, Name: "Business", Description: "Founders and managers"},
	}
	b.specializations = []circlemodel.Specialization{
		{ID: 1, Name: "Backend", Sphere: b.spheres[0]},
		{ID: 2, Name: "Frontend", Sphere: b.spheres[0]},
		{ID: 3, Name: "UX research", Sphere: b.spheres[1]},
		{ID: 4, Name: "Marketing", Sphere: b.spheres[2]},
	}
	b.activityTypes = []circlemodel.ActivityType{
		{ID: 1, Name: "Hiking", Icon: "🥾"},
		{ID: 2, Name: "Rafting", Icon: "🛶"},
	}
	b.destinations = []circlemodel.Destination{
		{ID: 1, Name: "Chimgan", Region: "Tashkent"},
		{ID: 2, Name: "Samarkand", Region: "Samarkand"},
	}
	b.tripFormats = []circlemodel.TripFormat{
		{ID: 1, Name: "Group"},
		{ID: 2, Name: "Private"},
	}
	b.travelStyles = []circlemodel.TravelStyle{
		{ID: 1, Name: "Active", Icon: "⛰"},
		{ID: 2, Name: "Relaxed", Icon: "🌴"},
	}
	b.travelLocations = []circlemodel.TravelLocation{
		{ID: 1, Name: "Mountains"},
		{ID: 2, Name: "Cities"},
	}
	b.tripDurations = []circlemodel.TripDuration{
		{ID: 1, Name: "Weekend"},
		{ID: 2, Name: "Week"},
	}
	b.categories = []circlemodel.TourCategory{
		{ID: 1, Name: "Mountains"},
		{ID: 2, Name: "Culture"},
	}

	mountains, culture := &b.categories[0], &b.categories[1]
	b.tours = []circlemodel.Tour{
		{
			ID: 1, Title: "Chimgan weekend", Slug: "chimgan-weekend", Category: mountains,
			PriceFrom: 100000, DurationDays: 2, DurationNights: 1, DistanceFromTashkentKm: 85, IsActive: true,
			Schedule: []circlemodel.ScheduleDay{
				{ID: 1, Day: 1, Title: "Arrival", Description: "Transfer and camp"},
				{ID: 2, Day: 2, Title: "Summit", Description: "Big Chimgan ascent"},
			},
			Sessions: []circlemodel.TourSession{
				{ID: 1, StartDate: "2026-11-07", EndDate: "2026-11-08", Price: 100000, MaxParticipants: 12, CurrentParticipants: 4, AvailableSeats: 8, IsActive: true},
				{ID: 2, StartDate: "2026-05-02", EndDate: "2026-05-03", Price: 100000, MaxParticipants: 12, CurrentParticipants: 12, IsActive: false},
			},
			Participants: []circlemodel.Participant{
				{ID: 10, FirstName: "Dilnoza", LastName: "K", SphereName: "IT", SpecializationName: "Backend"},
			},
		},
		{ID: 2, Title: "Charvak lake", Slug: "charvak-lake", Category: mountains, PriceFrom: 300000, DurationDays: 2, IsActive: true},
		{ID: 3, Title: "Samarkand classic", Slug: "samarkand-classic", Category: culture, PriceFrom: 500000, DurationDays: 3, IsActive: true},
		{ID: 4, Title: "Bukhara nights", Slug: "bukhara-nights", Category: culture, PriceFrom: 700000, DurationDays: 4, IsActive: true},
		{ID: 5, Title: "Pamir expedition", Slug: "pamir-expedition", Category: mountains, PriceFrom: 900000, DurationDays: 8, IsActive: true},
	}
}
