package dto

type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type NavRequest struct {
	Tab string `form:"tab" binding:"required"`
}

type ConfirmRequest struct {
	Confirm string `form:"confirm"`
}

func (r ConfirmRequest) Confirmed() bool {
	return r.Confirm == "yes"
}
