package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// AttendanceService interface for the service
type AttendanceService interface {
	Register(ctx context.Context, name string) (*domain.User, error)
	User(ctx context.Context, key string) (*domain.User, error)
	Users(ctx context.Context) ([]domain.User, error)
	MarkAttendance(ctx context.Context) (*domain.AttendanceRecord, error)
	Records(ctx context.Context, date string) ([]domain.AttendanceRecord, error)
	Analytics(ctx context.Context) (*domain.AttendanceSummary, error)
}

// AttendanceHandler handles user registration and attendance requests
type AttendanceHandler struct {
	service AttendanceService
	logger  *slog.Logger
}

func NewAttendanceHandler(service AttendanceService, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		logger:  logger,
	}
}

type RegisterRequest struct {
	Name string `json:"name"`
}

type UserResponse struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	RegisteredAt string `json:"registered_at"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

type AttendanceResponse struct {
	UserKey string `json:"user_key"`
	Name    string `json:"name"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

type AttendanceListResponse struct {
	Records []AttendanceResponse `json:"records"`
	Total   int                  `json:"total"`
}

type SummaryResponse struct {
	TotalRecords    int                  `json:"total_records"`
	UniqueAttendees int                  `json:"unique_attendees"`
	ByDate          []domain.DailyCount  `json:"by_date"`
	ByPerson        []domain.PersonCount `json:"by_person"`
	ByHour          [24]int              `json:"by_hour"`
	Recent          []AttendanceResponse `json:"recent"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		Key:          u.Key,
		Name:         u.Name,
		RegisteredAt: u.RegisteredAt.Format(domain.TimestampLayout),
	}
}

func toAttendanceResponse(r *domain.AttendanceRecord) AttendanceResponse {
	return AttendanceResponse{
		UserKey: r.UserKey,
		Name:    r.Name,
		Date:    r.Date(),
		Time:    r.Time(),
	}
}

func toAttendanceList(records []domain.AttendanceRecord) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(records))
	for i := range records {
		out = append(out, toAttendanceResponse(&records[i]))
	}
	return out
}

// Register POST /v1/users - capture a face and register it under a name
func (h *AttendanceHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if strings.TrimSpace(req.Name) == "" {
		return domain.ErrValidationFailed.WithMessage("name is required")
	}

	user, err := h.service.Register(c.UserContext(), req.Name)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
}

// ListUsers GET /v1/users
func (h *AttendanceHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.Users(c.UserContext())
	if err != nil {
		return err
	}

	resp := UserListResponse{Users: make([]UserResponse, 0, len(users)), Total: len(users)}
	for i := range users {
		resp.Users = append(resp.Users, toUserResponse(&users[i]))
	}

	return c.JSON(resp)
}

// GetUser GET /v1/users/:key
func (h *AttendanceHandler) GetUser(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Params("key"))
	if key == "" {
		return domain.ErrValidationFailed.WithMessage("key is required")
	}

	user, err := h.service.User(c.UserContext(), key)
	if err != nil {
		return err
	}

	return c.JSON(toUserResponse(user))
}

// Mark POST /v1/attendance - identify the person at the camera
func (h *AttendanceHandler) Mark(c *fiber.Ctx) error {
	record, err := h.service.MarkAttendance(c.UserContext())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toAttendanceResponse(record))
}

// Records GET /v1/attendance?date=YYYY-MM-DD
func (h *AttendanceHandler) Records(c *fiber.Ctx) error {
	records, err := h.service.Records(c.UserContext(), strings.TrimSpace(c.Query("date")))
	if err != nil {
		return err
	}

	return c.JSON(AttendanceListResponse{
		Records: toAttendanceList(records),
		Total:   len(records),
	})
}

// Summary GET /v1/attendance/summary
func (h *AttendanceHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.service.Analytics(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(SummaryResponse{
		TotalRecords:    summary.TotalRecords,
		UniqueAttendees: summary.UniqueAttendees,
		ByDate:          summary.ByDate,
		ByPerson:        summary.ByPerson,
		ByHour:          summary.ByHour,
		Recent:          toAttendanceList(summary.Recent),
	})
}
