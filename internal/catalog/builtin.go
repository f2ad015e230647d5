package catalog

import "aquaform/internal/models"

// Builtin returns the library shipped with the binary.
func Builtin() Snapshot {
	return Snapshot{
		Species: []models.Species{
			{
				ID:              "s1",
				Name:            "Atlantic Salmon",
				ScientificName:  "Salmo salar",
				LifeStage:       models.Juvenile,
				TargetNutrients: models.NutrientProfile{Protein: 45, Lipids: 20, Fiber: 2, Ash: 8, Moisture: 10, Carbohydrates: 15},
				Description:     "Requires high protein and moderate lipid levels for optimal growth in the juvenile stage.",
			},
			{
				ID:              "s2",
				Name:            "Whiteleg Shrimp",
				ScientificName:  "Litopenaeus vannamei",
				LifeStage:       models.Adult,
				TargetNutrients: models.NutrientProfile{Protein: 35, Lipids: 8, Fiber: 4, Ash: 12, Moisture: 10, Carbohydrates: 31},
				Description:     "Omnivorous scavenger requiring balanced plant and animal proteins.",
			},
			{
				ID:              "s3",
				Name:            "Nile Tilapia",
				ScientificName:  "Oreochromis niloticus",
				LifeStage:       models.GrowOut,
				TargetNutrients: models.NutrientProfile{Protein: 30, Lipids: 6, Fiber: 6, Ash: 10, Moisture: 10, Carbohydrates: 38},
				Description:     "Hardy freshwater species, tolerates higher carbohydrate levels.",
			},
			{
				ID:              "s4",
				Name:            "Gilthead Seabream",
				ScientificName:  "Sparus aurata",
				LifeStage:       models.Adult,
				TargetNutrients: models.NutrientProfile{Protein: 44, Lipids: 16, Fiber: 2.5, Ash: 9, Moisture: 9, Carbohydrates: 19.5},
				Description:     "Carnivorous species requiring high quality fish meal or equivalent.",
			},
		},
		Ingredients: []models.Ingredient{
			{ID: "i1", Name: "Fish Meal (Anchovy)", Category: models.AnimalProtein, CostPerKg: 1.50,
				Nutrients: models.NutrientProfile{Protein: 65, Lipids: 10, Fiber: 0.5, Ash: 16, Moisture: 8, Carbohydrates: 0.5}},
			{ID: "i2", Name: "Soybean Meal", Category: models.PlantProtein, CostPerKg: 0.55,
				Nutrients: models.NutrientProfile{Protein: 48, Lipids: 2, Fiber: 6, Ash: 6, Moisture: 11, Carbohydrates: 27}},
			{ID: "i3", Name: "Wheat Flour", Category: models.Cereal, CostPerKg: 0.35,
				Nutrients: models.NutrientProfile{Protein: 12, Lipids: 1.5, Fiber: 2.5, Ash: 1.5, Moisture: 12, Carbohydrates: 70.5}},
			{ID: "i4", Name: "Fish Oil", Category: models.Oil, CostPerKg: 2.10,
				Nutrients: models.NutrientProfile{Protein: 0, Lipids: 99.5, Fiber: 0, Ash: 0, Moisture: 0.5, Carbohydrates: 0}},
			{ID: "i5", Name: "Corn Gluten Meal", Category: models.PlantProtein, CostPerKg: 0.65,
				Nutrients: models.NutrientProfile{Protein: 60, Lipids: 2.5, Fiber: 1.5, Ash: 1.5, Moisture: 10, Carbohydrates: 24.5}},
			{ID: "i6", Name: "Krill Meal", Category: models.AnimalProtein, CostPerKg: 2.80,
				Nutrients: models.NutrientProfile{Protein: 58, Lipids: 22, Fiber: 4, Ash: 10, Moisture: 6, Carbohydrates: 0}},
			{ID: "i7", Name: "Vitamin/Mineral Premix", Category: models.Additive, CostPerKg: 5.00,
				Nutrients: models.NutrientProfile{Protein: 0, Lipids: 0, Fiber: 0, Ash: 95, Moisture: 5, Carbohydrates: 0}},
			{ID: "i8", Name: "Pea Protein Concentrate", Category: models.PlantProtein, CostPerKg: 0.90,
				Nutrients: models.NutrientProfile{Protein: 55, Lipids: 1.8, Fiber: 3, Ash: 4, Moisture: 8, Carbohydrates: 28.2}},
		},
	}
}
