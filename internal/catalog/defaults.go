package catalog

// DefaultDescriptors lists the storefront's merchandising entities.
func DefaultDescriptors() []Descriptor {
	return []Descriptor{
		{
			Key: "brand", Slug: "brand", DisplayName: "Brand",
			Table: "brand", Bucket: "brand",
			SingularKey: "brand", PluralKey: "brands",
			Mapping: &MappingTable{Slug: "product-brand", Table: "product_brand", OwnFK: "brand_id"},
		},
		{
			Key: "bbm_picks", Slug: "bbm-picks", DisplayName: "BBM Pick",
			Table: "bbmpicks", Bucket: "bbm_picks",
			SingularKey: "bbmPick", PluralKey: "bbmPicks",
			Mapping: &MappingTable{Slug: "product-bbm-picks", Table: "product_bbmpicks", OwnFK: "bbmpicks_id"},
		},
		{
			Key: "quick_pick", Slug: "quick-pick", DisplayName: "Quick Pick",
			Table: "quick_pick", Bucket: "quickPick",
			SingularKey: "quickPick", PluralKey: "quickPicks",
		},
		{
			Key: "quick_pick_group", Slug: "quick-pick-group", DisplayName: "Quick Pick Group",
			Table: "quick_pick_group", Bucket: "quickPickGroup",
			SingularKey: "quickPickGroup", PluralKey: "quickPickGroups",
			Parent:  &ParentRef{Entity: "quick_pick", FKColumn: "quick_pick_id"},
			Mapping: &MappingTable{Slug: "quick-pick-group-product", Table: "quickpick_group_product", OwnFK: "quick_pick_group_id"},
		},
		{
			Key: "bnb", Slug: "bnb", DisplayName: "B&B",
			Table: "bnb", Bucket: "bnb",
			SingularKey: "bnb", PluralKey: "bnbs",
		},
		{
			Key: "bnb_group", Slug: "bnb-group", DisplayName: "B&B Group",
			Table: "bnb_group", Bucket: "bnbGroup",
			SingularKey: "bnbGroup", PluralKey: "bnbGroups",
			Parent:  &ParentRef{Entity: "bnb", FKColumn: "bnb_id"},
			Mapping: &MappingTable{Slug: "bnb-group-product", Table: "bnb_group_product", OwnFK: "bnb_group_id"},
		},
		{
			Key: "saving_zone", Slug: "saving-zone", DisplayName: "Saving Zone",
			Table: "saving_zone", Bucket: "savingZone",
			SingularKey: "savingZone", PluralKey: "savingZones",
		},
		{
			Key: "saving_zone_group", Slug: "saving-zone-group", DisplayName: "Saving Zone Group",
			Table: "saving_zone_group", Bucket: "savingZoneGroup",
			SingularKey: "savingZoneGroup", PluralKey: "savingZoneGroups",
			Parent:  &ParentRef{Entity: "saving_zone", FKColumn: "saving_zone_id"},
			Mapping: &MappingTable{Slug: "saving-zone-group-product", Table: "saving_zone_group_product", OwnFK: "saving_zone_group_id"},
		},
		{
			Key: "recommended_store", Slug: "recommended-stores", DisplayName: "Recommended Store",
			Table: "recommended_store", Bucket: "recommended_store",
			SingularKey: "recommendedStore", PluralKey: "recommendedStores",
			Mapping: &MappingTable{Slug: "product-recommended-stores", Table: "product_recommended_store", OwnFK: "recommended_store_id"},
		},
		{
			Key: "store", Slug: "stores", DisplayName: "Store",
			Table: "Store", Bucket: "Store",
			SingularKey: "store", PluralKey: "stores",
			ImageColumn: "image",
			ExtraFields: []string{"link"},
		},
	}
}

// DefaultProductSets lists the owner-less product collections.
func DefaultProductSets() []ProductSet {
	return []ProductSet{
		{Slug: "you-may-like-products", Table: "you_may_like", DisplayName: "You May Like"},
	}
}

// DefaultRegistry builds the registry for the storefront's entities.
func DefaultRegistry() *Registry {
	return MustNewRegistry(DefaultDescriptors(), DefaultProductSets())
}
