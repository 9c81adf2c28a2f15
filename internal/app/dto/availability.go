package dto

type AvailableDays struct {
	ProductID    string   `json:"product_id"`
	ChargingType string   `json:"charging_type"`
	Days         []string `json:"days"`
}

type AvailableHours struct {
	ProductID string   `json:"product_id"`
	Date      string   `json:"date"`
	Hours     []string `json:"hours"`
}
