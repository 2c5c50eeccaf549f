package models

// AdminStatus 管理员账户状态
type AdminStatus string

const (
	AdminStatusActive   AdminStatus = "active"
	AdminStatusInactive AdminStatus = "inactive"
	AdminStatusLocked   AdminStatus = "locked"
)

// Admin represents dashboard administrators stored in the database
type Admin struct {
	BaseModel
	Username string      `gorm:"type:varchar(50);unique;not null" json:"username"`
	Password string      `gorm:"type:varchar(100);not null" json:"-"` // Password not exposed in JSON
	Email    string      `gorm:"type:varchar(100)" json:"email"`
	Role     string      `gorm:"type:varchar(50);default:'admin'" json:"role"`
	Status   AdminStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
}
