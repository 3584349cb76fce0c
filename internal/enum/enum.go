package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusPending    = "PENDING"
	OrderStatusPreparing  = "PREPARING"
	OrderStatusWithDriver = "WITH_DRIVER"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCancelled  = "CANCELLED"
)

const (
	DeliveryTypePickup      = "PICKUP"
	DeliveryTypeInsideCity  = "DELIVERY_INSIDE_CITY"
	DeliveryTypeOutsideCity = "DELIVERY_OUTSIDE_CITY"
)

const (
	ItemTypeProduct = "PRODUCT"
	ItemTypeOffer   = "OFFER"
)

// ── Accounts and notification routing ──

const (
	RoleAdmin    = "admin"
	RoleCook     = "cook"
	RoleDriver   = "driver"
	RoleCustomer = "customer"
)

// ── Product options ──

const (
	SelectionTypeSingle   = "SINGLE"
	SelectionTypeMultiple = "MULTIPLE"
)

// ── system_settings keys ──

const (
	SettingNotificationChannels = "notification_channels"
)
