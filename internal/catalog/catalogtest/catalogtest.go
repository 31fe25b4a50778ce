// Package catalogtest provides a small fixed catalog for tests.
package catalogtest

import (
	"testing"

	"github.com/krishanki/PhonePixie/internal/catalog"
	"github.com/krishanki/PhonePixie/internal/models"
)

func phone(brand, model string, price, rating float64, has5G bool, refresh, ram, battery int, rear float64) models.Phone {
	return models.Phone{
		BrandName:             brand,
		Model:                 model,
		Price:                 price,
		Rating:                rating,
		Has5G:                 has5G,
		RefreshRate:           refresh,
		RAMCapacity:           ram,
		BatteryCapacity:       battery,
		PrimaryCameraRear:     rear,
		PrimaryCameraFront:    16,
		InternalMemory:        128,
		NumCores:              8,
		ProcessorSpeed:        2.4,
		NumRearCameras:        3,
		NumFrontCameras:       1,
		FastChargingAvailable: true,
		FastCharging:          33,
		ScreenSize:            6.5,
		ResolutionWidth:       1080,
		ResolutionHeight:      2400,
		OS:                    "android",
	}
}

// Phones returns a fresh copy of the fixture catalog
func Phones() []models.Phone {
	phones := []models.Phone{
		phone("samsung", "Samsung Galaxy A54 5G", 28999, 86, true, 120, 8, 5000, 50),
		phone("oneplus", "OnePlus Nord 3 5G", 29999, 86, true, 120, 8, 5000, 50),
		phone("google", "Google Pixel 7a", 31999, 85, true, 90, 8, 4385, 64),
		phone("google", "Google Pixel 8a", 37999, 87, true, 120, 8, 4492, 64),
		phone("oneplus", "OnePlus 12R", 39999, 88, true, 120, 8, 5500, 50),
		phone("samsung", "Samsung Galaxy M35 5G", 19999, 82, true, 120, 6, 6000, 50),
		phone("xiaomi", "Xiaomi Redmi Note 13 5G", 17999, 80, true, 120, 6, 5000, 108),
		phone("realme", "Realme Narzo 60x 5G", 12999, 74, true, 120, 4, 5000, 50),
		phone("samsung", "Samsung Galaxy F14 5G", 12490, 75, true, 90, 4, 6000, 50),
		phone("apple", "Apple iPhone 13", 52999, 79, true, 60, 4, 3240, 12),
		phone("samsung", "Samsung Galaxy S21 FE 5G", 34999, 85, true, 120, 8, 4500, 12),
		phone("motorola", "Motorola Moto G34 5G", 10999, 72, true, 120, 4, 5000, 50),
		phone("samsung", "Samsung Galaxy A05", 9999, 65, false, 60, 4, 5000, 50),
	}
	phones[0].HasNFC = true
	phones[6].HasIRBlaster = true
	phones[9].OS = "ios"
	phones[9].FastChargingAvailable = false
	phones[12].FastChargingAvailable = false
	phones[5].ExtendedMemoryAvailable = true
	phones[5].ExtendedUpto = 1024
	return phones
}

// Store builds a catalog.Store over Phones
func Store(t testing.TB) *catalog.Store {
	t.Helper()
	s, err := catalog.NewStore(Phones())
	if err != nil {
		t.Fatalf("building fixture store: %v", err)
	}
	return s
}
