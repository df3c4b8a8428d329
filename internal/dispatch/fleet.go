package dispatch

// DemoFleet returns the sample drivers used by the portfolio demo. Locations
// cluster around the Johnstown, PA area.
func DemoFleet() []Driver {
	return []Driver{
		{
			ID:     "driver-1",
			Name:   "John Smith",
			Status: StatusAvailable,
			Location: Location{Lat: 40.2732, Lng: -76.8867},
			Vehicle: Vehicle{
				Types:          []string{"standard", "wheelchair"},
				OxygenEquipped: true,
				Capacity:       2,
			},
			CurrentLoad:    0,
			Certifications: []string{"basic", "medical-attendant"},
		},
		{
			ID:     "driver-2",
			Name:   "Sarah Johnson",
			Status: StatusOnRoute,
			Location: Location{Lat: 40.2851, Lng: -76.8741},
			Vehicle: Vehicle{
				Types:          []string{"standard", "wheelchair", "stretcher"},
				OxygenEquipped: true,
				Capacity:       1,
			},
			CurrentLoad:    1,
			Certifications: []string{"basic", "medical-attendant", "advanced"},
		},
		{
			ID:     "driver-3",
			Name:   "Mike Davis",
			Status: StatusAvailable,
			Location: Location{Lat: 40.2692, Lng: -76.9012},
			Vehicle: Vehicle{
				Types:          []string{"standard"},
				OxygenEquipped: false,
				Capacity:       3,
			},
			CurrentLoad:    0,
			Certifications: []string{"basic"},
		},
		{
			ID:     "driver-4",
			Name:   "Emily Brown",
			Status: StatusBreak,
			Location: Location{Lat: 40.2801, Lng: -76.8934},
			Vehicle: Vehicle{
				Types:          []string{"standard", "wheelchair"},
				OxygenEquipped: true,
				Capacity:       2,
			},
			CurrentLoad:    0,
			Certifications: []string{"basic", "medical-attendant"},
		},
	}
}
