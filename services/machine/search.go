package machine

import (
	"fmt"
	"math"
	"time"

	"machly/models"
)

const earthRadiusKm = 6371.0

// haversineKm returns the great-circle distance between two points.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// Search returns active machines matching the filters. Geo filtering needs
// both coordinates; availability filtering needs both ends of the range.
func (s *DefaultMachineService) Search(params SearchParams) ([]models.Machine, error) {
	machines, err := s.MachineRepo.GetAll(params.Category, true)
	if err != nil {
		return nil, fmt.Errorf("failed to search machines: %w", err)
	}

	geoFilter := params.Latitude != nil && params.Longitude != nil && params.RadiusKm > 0
	rangeFilter := params.Start != nil && params.End != nil

	out := machines[:0:0]
	for _, m := range machines {
		if geoFilter {
			d := haversineKm(*params.Latitude, *params.Longitude, m.Location.Latitude(), m.Location.Longitude())
			if d > params.RadiusKm {
				continue
			}
		}
		if rangeFilter && m.Calendar.HasConflict(*params.Start, *params.End) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// CheckAvailability reports whether the machine is free over [start, end).
func (s *DefaultMachineService) CheckAvailability(machineID string, start, end time.Time) (bool, error) {
	machine, err := s.GetByID(machineID)
	if err != nil {
		return false, err
	}
	if !machine.IsActive {
		return false, nil
	}
	return !machine.Calendar.HasConflict(start, end), nil
}
