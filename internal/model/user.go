package model

type Role string

const (
	RoleManager    Role = "manager"
	RoleAccountant Role = "accountant"
	RoleTherapist  Role = "therapist"
	RoleSecretary  Role = "secretary"
	RoleGuard      Role = "guard"
)
