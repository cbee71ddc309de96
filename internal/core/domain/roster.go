package domain

import "time"

// The roster entities below exist in the data schema and seed data only.
// Shift scheduling, swap workflows and payroll are out of scope; the auth
// core stores a user's sede assignment but never interprets it.

// ShiftType classifies a shift within a day.
type ShiftType string

const (
	ShiftMorning   ShiftType = "MORNING"
	ShiftAfternoon ShiftType = "AFTERNOON"
	ShiftNight     ShiftType = "NIGHT"
	ShiftCustom    ShiftType = "CUSTOM"
)

// ShiftRequestStatus is the lifecycle state of a swap request.
type ShiftRequestStatus string

const (
	RequestPending   ShiftRequestStatus = "PENDING"
	RequestApproved  ShiftRequestStatus = "APPROVED"
	RequestRejected  ShiftRequestStatus = "REJECTED"
	RequestCancelled ShiftRequestStatus = "CANCELLED"
)

// Sede is a physical site users and shifts are assigned to.
type Sede struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	Address   string    `json:"address" bson:"address"`
	City      string    `json:"city" bson:"city"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty"`
	ManagerID string    `json:"managerId,omitempty" bson:"manager_id,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Shift is a single rostered work period for one employee at one sede.
type Shift struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	Type       ShiftType `json:"type" bson:"type"`
	Date       time.Time `json:"date" bson:"date"`
	StartTime  time.Time `json:"startTime" bson:"start_time"`
	EndTime    time.Time `json:"endTime" bson:"end_time"`
	EmployeeID string    `json:"employeeId" bson:"employee_id"`
	SedeID     string    `json:"sedeId" bson:"sede_id"`
	Confirmed  bool      `json:"confirmed" bson:"confirmed"`
	Cancelled  bool      `json:"cancelled" bson:"cancelled"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updated_at"`
}

// ShiftRequest is a proposed swap ("permuta") between two shifts.
type ShiftRequest struct {
	ID               string             `json:"id" bson:"_id,omitempty"`
	InitiatorShiftID string             `json:"initiatorShiftId" bson:"initiator_shift_id"`
	TargetShiftID    string             `json:"targetShiftId" bson:"target_shift_id"`
	InitiatorID      string             `json:"initiatorId" bson:"initiator_id"`
	TargetID         string             `json:"targetId" bson:"target_id"`
	Status           ShiftRequestStatus `json:"status" bson:"status"`
	Reason           string             `json:"reason,omitempty" bson:"reason,omitempty"`
	DecidedAt        *time.Time         `json:"decidedAt,omitempty" bson:"decided_at,omitempty"`
	ApprovedBy       string             `json:"approvedBy,omitempty" bson:"approved_by,omitempty"`
	CreatedAt        time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updated_at"`
}
