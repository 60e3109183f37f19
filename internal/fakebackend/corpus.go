package fakebackend

import "github.com/FranksOps/puresearch/internal/api"

// Seed is the starting corpus, the seven documents the PureSearch prototype
// shipped with.
var Seed = []api.SearchResult{
	{
		ID:            "1",
		Title:         "The History of Classical Music - Authentic Analysis",
		URL:           "https://example.com/classical-music-history",
		Description:   "An in-depth exploration of classical music through the ages, with authentic analysis from leading music historians.",
		Confidence:    95,
		PublishedDate: "2023-04-12",
		ContentType:   "article",
	},
	{
		ID:            "2",
		Title:         "Traditional Cooking Methods from Around the World",
		URL:           "https://example.com/traditional-cooking-methods",
		Description:   "Explore authentic cooking techniques passed down through generations across different cultures and regions.",
		Confidence:    88,
		PublishedDate: "2022-11-03",
		ContentType:   "article",
	},
	{
		ID:            "3",
		Title:         "Personal Travel Journal: Exploring Remote Villages in Asia",
		URL:           "https://example.com/travel-asia-villages",
		Description:   "A personal account of travels through remote villages in Southeast Asia, with first-hand observations and cultural insights.",
		Confidence:    92,
		PublishedDate: "2023-08-21",
		ContentType:   "blog",
	},
	{
		ID:            "4",
		Title:         "Handcrafted Furniture: Techniques and Materials",
		URL:           "https://example.com/handcrafted-furniture",
		Description:   "Learn about traditional woodworking techniques and materials used in creating handcrafted furniture.",
		Confidence:    76,
		PublishedDate: "2021-06-30",
		ContentType:   "guide",
	},
	{
		ID:            "5",
		Title:         "Local Wildlife Conservation Efforts in the Amazon",
		URL:           "https://example.com/amazon-conservation",
		Description:   "Documenting local efforts to preserve biodiversity in the Amazon rainforest, with reports from field researchers.",
		Confidence:    85,
		PublishedDate: "2023-02-14",
		ContentType:   "article",
	},
	{
		ID:            "6",
		Title:         "Historical Weather Patterns and Climate Change",
		URL:           "https://example.com/historical-weather-patterns",
		Description:   "Analysis of historical weather data and how it relates to current climate change patterns.",
		Confidence:    68,
		PublishedDate: "2022-09-09",
		ContentType:   "research",
	},
	{
		ID:            "7",
		Title:         "Family Recipes: Mediterranean Cuisine",
		URL:           "https://example.com/mediterranean-family-recipes",
		Description:   "Collection of authentic family recipes from the Mediterranean region, passed down through generations.",
		Confidence:    93,
		PublishedDate: "2020-12-24",
		ContentType:   "blog",
	},
}
