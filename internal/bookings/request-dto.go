package bookings

// BookingListQuery pages through a session's bookings
type BookingListQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
