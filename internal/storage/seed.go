package storage

import (
	"context"
	"database/sql"
)

// SeedIfEmpty inserts a small sample fleet when the cars table has no rows,
// so a fallback store stays usable for demos and local development.
func SeedIfEmpty(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cars`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	repo := NewVehicleRepository(db)
	for i := range sampleFleet {
		if err := repo.Create(ctx, &sampleFleet[i]); err != nil {
			return err
		}
	}
	return nil
}

var sampleFleet = []Vehicle{
	{Manufacturer: "Toyota", Model: "Camry", Year: 2023, Price: 28855, EngineInfo: "2.5L I4", Transmission: "automatic", FuelType: "gasoline", MPG: 32, BodyType: "sedan"},
	{Manufacturer: "Toyota", Model: "RAV4 Hybrid", Year: 2023, Price: 31725, EngineInfo: "2.5L I4 hybrid", Transmission: "CVT", FuelType: "hybrid", MPG: 40, BodyType: "suv"},
	{Manufacturer: "Honda", Model: "Accord", Year: 2023, Price: 27295, EngineInfo: "1.5L turbocharged I4", Transmission: "CVT", FuelType: "gasoline", MPG: 32, BodyType: "sedan"},
	{Manufacturer: "Honda", Model: "CR-V", Year: 2022, Price: 26800, EngineInfo: "1.5L turbocharged I4", Transmission: "CVT", FuelType: "gasoline", MPG: 30, BodyType: "suv"},
	{Manufacturer: "BMW", Model: "X5", Year: 2023, Price: 61600, EngineInfo: "3.0L turbocharged I6", Transmission: "automatic", FuelType: "gasoline", MPG: 23, BodyType: "suv"},
	{Manufacturer: "BMW", Model: "330i", Year: 2022, Price: 43800, EngineInfo: "2.0L turbocharged I4", Transmission: "automatic", FuelType: "gasoline", MPG: 28, BodyType: "sedan"},
	{Manufacturer: "Ford", Model: "F-150", Year: 2023, Price: 34585, EngineInfo: "3.5L V6", Transmission: "automatic", FuelType: "gasoline", MPG: 22, BodyType: "pickup"},
	{Manufacturer: "Ford", Model: "Mustang", Year: 2022, Price: 38000, EngineInfo: "5.0L V8", Transmission: "manual", FuelType: "gasoline", MPG: 19, BodyType: "coupe"},
	{Manufacturer: "Tesla", Model: "Model 3", Year: 2023, Price: 40240, EngineInfo: "dual motor electric", Transmission: "single-speed", FuelType: "electric", MPG: 132, BodyType: "sedan"},
	{Manufacturer: "Volkswagen", Model: "Jetta TDI", Year: 2021, Price: 23900, EngineInfo: "2.0L turbo-diesel I4", Transmission: "automatic", FuelType: "diesel", MPG: 41, BodyType: "sedan"},
}
