package store

import "github.com/rahat-dev/sharebite/backend/internal/models"

// Collection names are the external wire contract shared with the stored
// data; they must not change.
const (
	FoodCollection     = "Food Donations"
	ClothingCollection = "Clothing Donations"
	MonetaryCollection = "Monetary Donations"
	OtherCollection    = "Other donations"
	WishlistCollection = "wishlist"
	UsersCollection    = "users"
)

// categoryCollections is the single source of truth mapping each donation
// category to its backing collection.
var categoryCollections = map[models.Category]string{
	models.CategoryFood:     FoodCollection,
	models.CategoryClothing: ClothingCollection,
	models.CategoryMonetary: MonetaryCollection,
	models.CategoryOther:    OtherCollection,
}

// ScanOrder is the fixed order the category collections are scanned in.
var ScanOrder = []models.Category{
	models.CategoryFood,
	models.CategoryClothing,
	models.CategoryMonetary,
	models.CategoryOther,
}

// CollectionFor returns the collection backing the given category.
func CollectionFor(cat models.Category) (string, bool) {
	name, ok := categoryCollections[cat]
	return name, ok
}
