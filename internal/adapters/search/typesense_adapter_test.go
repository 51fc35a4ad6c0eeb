package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDocumentToVehicle(t *testing.T) {
	doc := map[string]interface{}{
		"id":                 "veh-1",
		"make":               "BMW",
		"model":              "3 Series",
		"body_type":          "saloon",
		"fuel_type":          "diesel",
		"transmission":       "automatic",
		"color":              "black",
		"price":              18500.0,
		"mileage_km":         62000.0,
		"first_registration": float64(time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC).Unix()),
		"description":        "full service history",
		"is_active":          true,
	}

	v := documentToVehicle(doc)

	assert.Equal(t, "veh-1", v.ID)
	assert.Equal(t, "BMW", v.Make)
	assert.Equal(t, "3 Series", v.Model)
	assert.Equal(t, "saloon", v.BodyType)
	assert.Equal(t, "diesel", v.FuelType)
	assert.Equal(t, "automatic", v.Transmission)
	assert.Equal(t, "black", v.Color)
	assert.Equal(t, 18500.0, v.Price)
	assert.Equal(t, 62000, v.MileageKm)
	assert.Equal(t, time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC), v.FirstRegistration)
	assert.Equal(t, "full service history", v.Description)
	assert.True(t, v.IsActive)
}

func TestDocumentToVehicle_PartialDocument(t *testing.T) {
	v := documentToVehicle(map[string]interface{}{
		"id":    "veh-2",
		"price": "not-a-number",
	})

	assert.Equal(t, "veh-2", v.ID)
	assert.Zero(t, v.Price)
	assert.Zero(t, v.MileageKm)
	assert.True(t, v.FirstRegistration.IsZero())
}
