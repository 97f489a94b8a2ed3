package models

// SystemSettings are the console-wide settings.
type SystemSettings struct {
	CompanyName     string `json:"companyName"`
	SupportEmail    string `json:"supportEmail"`
	SupportPhone    string `json:"supportPhone"`
	Timezone        string `json:"timezone"`
	MaintenanceMode bool   `json:"maintenanceMode"`
	APIRateLimit    int    `json:"apiRateLimit"`
	DataRetention   int    `json:"dataRetention"`
	SessionTimeout  int    `json:"sessionTimeout"`
	PasswordExpiry  int    `json:"passwordExpiry"`
	Require2FA      bool   `json:"require2FA"`
}

// SystemSettingsPatch is a partial update; nil fields are not sent.
type SystemSettingsPatch struct {
	CompanyName     *string `json:"companyName,omitempty"`
	SupportEmail    *string `json:"supportEmail,omitempty"`
	SupportPhone    *string `json:"supportPhone,omitempty"`
	Timezone        *string `json:"timezone,omitempty"`
	MaintenanceMode *bool   `json:"maintenanceMode,omitempty"`
	APIRateLimit    *int    `json:"apiRateLimit,omitempty"`
	DataRetention   *int    `json:"dataRetention,omitempty"`
	SessionTimeout  *int    `json:"sessionTimeout,omitempty"`
	PasswordExpiry  *int    `json:"passwordExpiry,omitempty"`
	Require2FA      *bool   `json:"require2FA,omitempty"`
}

type NotificationSettings struct {
	Email        bool `json:"email"`
	SMS          bool `json:"sms"`
	Push         bool `json:"push"`
	Reports      bool `json:"reports"`
	Disputes     bool `json:"disputes"`
	SystemAlerts bool `json:"systemAlerts"`
}

type NotificationSettingsPatch struct {
	Email        *bool `json:"email,omitempty"`
	SMS          *bool `json:"sms,omitempty"`
	Push         *bool `json:"push,omitempty"`
	Reports      *bool `json:"reports,omitempty"`
	Disputes     *bool `json:"disputes,omitempty"`
	SystemAlerts *bool `json:"systemAlerts,omitempty"`
}

type SecuritySettings struct {
	TwoFactorEnabled      bool `json:"twoFactorEnabled"`
	SessionTimeout        int  `json:"sessionTimeout"`
	PasswordExpiry        int  `json:"passwordExpiry"`
	MaxLoginAttempts      int  `json:"maxLoginAttempts"`
	LockoutDuration       int  `json:"lockoutDuration"`
	RequireStrongPassword bool `json:"requireStrongPassword"`
}

type SecuritySettingsPatch struct {
	TwoFactorEnabled      *bool `json:"twoFactorEnabled,omitempty"`
	SessionTimeout        *int  `json:"sessionTimeout,omitempty"`
	PasswordExpiry        *int  `json:"passwordExpiry,omitempty"`
	MaxLoginAttempts      *int  `json:"maxLoginAttempts,omitempty"`
	LockoutDuration       *int  `json:"lockoutDuration,omitempty"`
	RequireStrongPassword *bool `json:"requireStrongPassword,omitempty"`
}
