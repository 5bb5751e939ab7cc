package gatcg

type cardDTO struct {
	Slug            string   `json:"slug"`
	Name            string   `json:"name"`
	Type            *string  `json:"type"`
	Element         *string  `json:"element"`
	Classes         []string `json:"classes"`
	Subtypes        []string `json:"subtypes"`
	Cost            *int     `json:"cost"`
	ReserveCost     *int     `json:"reserve_cost"`
	Power           *int     `json:"power"`
	LifeModifier    *int     `json:"life_modifier"`
	EffectText      *string  `json:"effect_text"`
	FlavorText      *string  `json:"flavor_text"`
	ImageURL        *string  `json:"image_url"`
	Set             *string  `json:"set"`
	CollectorNumber *string  `json:"collector_number"`
	Rarity          *string  `json:"rarity"`
	Artist          *string  `json:"artist"`
}
