package db_models

// GatewayCredential stores the OAuth token used for server-to-server calls to
// the payment gateway. One row per provider.
type GatewayCredential struct {
	BaseModel
	Provider     string `gorm:"size:64;uniqueIndex;not null"`
	AccessToken  string `gorm:"type:text"`
	RefreshToken string `gorm:"type:text"`
	TokenType    string `gorm:"size:32"`
	Expiry       int64
}

func (GatewayCredential) TableName() string { return "gateway_credentials" }
