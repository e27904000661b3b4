package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// RegisterUserRequest is the body of POST /v1/users
type RegisterUserRequest struct {
	Name string `json:"name" example:"Ada Lovelace"`
}

// UserResponse represents a registered user
type UserResponse struct {
	Key          string `json:"key" example:"ada_lovelace"`
	Name         string `json:"name" example:"Ada Lovelace"`
	RegisteredAt string `json:"registered_at" example:"2024-03-09 08:00:00"`
}

// UserListResponse represents the registered users
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total" example:"1"`
}

// AttendanceResponse represents one attendance record
type AttendanceResponse struct {
	UserKey string `json:"user_key" example:"ada_lovelace"`
	Name    string `json:"name" example:"Ada Lovelace"`
	Date    string `json:"date" example:"2024-03-09"`
	Time    string `json:"time" example:"08:00:00"`
}

// AttendanceListResponse represents the records of a date or of all dates
type AttendanceListResponse struct {
	Records []AttendanceResponse `json:"records"`
	Total   int                  `json:"total" example:"1"`
}

// DailyCountData is the number of records on a date
type DailyCountData struct {
	Date  string `json:"date" example:"2024-03-09"`
	Count int    `json:"count" example:"12"`
}

// PersonCountData is the number of days a person attended
type PersonCountData struct {
	Name  string `json:"name" example:"Ada Lovelace"`
	Count int    `json:"count" example:"5"`
}

// SummaryResponse represents the attendance analytics
type SummaryResponse struct {
	TotalRecords    int                  `json:"total_records" example:"42"`
	UniqueAttendees int                  `json:"unique_attendees" example:"8"`
	ByDate          []DailyCountData     `json:"by_date"`
	ByPerson        []PersonCountData    `json:"by_person"`
	ByHour          []int                `json:"by_hour"`
	Recent          []AttendanceResponse `json:"recent"`
}

// HealthResponse represents the health and readiness probes
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

var (
	errInternal = response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")
	errCamera   = response.New(ErrorResponse{Code: "CAMERA_UNAVAILABLE", Message: "Could not access webcam"}, "503", "Service Unavailable")
	errBusy     = response.New(ErrorResponse{Code: "CAPTURE_IN_PROGRESS", Message: "Another capture is running"}, "409", "Conflict")
	errCapture  = response.New(ErrorResponse{Code: "CAPTURE_FAILED", Message: "Session timed out - please try again"}, "422", "Unprocessable Entity")
)

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Presenca Attendance API",
		Version:     "v1.0.0",
		Description: "Face recognition attendance with motion liveness capture on the kiosk camera",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/users - Register user
		endpoint.New(
			endpoint.POST,
			"/users",
			endpoint.WithTags("Users"),
			endpoint.WithSummary("Register a user"),
			endpoint.WithDescription("Runs a liveness capture on the kiosk camera and stores the face under the normalized name. An existing name is overwritten."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(RegisterUserRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UserResponse{}, "201", "User registered"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request body"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "name is required"}, "422", "Unprocessable Entity"),
				errBusy,
				errCapture,
				errCamera,
				errInternal,
			}),
		),

		// GET /v1/users - List users
		endpoint.New(
			endpoint.GET,
			"/users",
			endpoint.WithTags("Users"),
			endpoint.WithSummary("List registered users"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UserListResponse{}, "200", "Users retrieved"),
			}),
			endpoint.WithErrors([]response.Response{errInternal}),
		),

		// GET /v1/users/:key - Get user
		endpoint.New(
			endpoint.GET,
			"/users/{key}",
			endpoint.WithTags("Users"),
			endpoint.WithSummary("Get a registered user"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("key", parameter.Path, parameter.WithDescription("Normalized user name")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UserResponse{}, "200", "User retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "USER_NOT_FOUND", Message: "User not found"}, "404", "Not Found"),
				errInternal,
			}),
		),

		// POST /v1/attendance - Mark attendance
		endpoint.New(
			endpoint.POST,
			"/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Mark attendance"),
			endpoint.WithDescription("Runs a liveness capture, identifies the person and records attendance for today. Marking again on the same day replaces the time."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AttendanceResponse{}, "201", "Attendance marked"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "FACE_NOT_RECOGNIZED", Message: "Face not recognized. Please register first."}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "NO_USERS_REGISTERED", Message: "No registered users found"}, "409", "Conflict"),
				errBusy,
				errCapture,
				errCamera,
				errInternal,
			}),
		),

		// GET /v1/attendance - List records
		endpoint.New(
			endpoint.GET,
			"/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("List attendance records"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("date", parameter.Query, parameter.WithDescription("Date as YYYY-MM-DD; all dates when omitted")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AttendanceListResponse{}, "200", "Records retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_DATE", Message: "Date must be YYYY-MM-DD"}, "422", "Unprocessable Entity"),
				errInternal,
			}),
		),

		// GET /v1/attendance/summary - Analytics
		endpoint.New(
			endpoint.GET,
			"/attendance/summary",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Attendance analytics"),
			endpoint.WithDescription("Totals, daily trend, per person counts, hourly distribution and the 10 most recent records"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SummaryResponse{}, "200", "Summary computed"),
			}),
			endpoint.WithErrors([]response.Response{errInternal}),
		),

		// GET /v1/ws - Operator feed
		endpoint.New(
			endpoint.GET,
			"/ws",
			endpoint.WithTags("Operators"),
			endpoint.WithSummary("Operator websocket feed"),
			endpoint.WithDescription("Streams capture.frame, user.registered and attendance.marked events"),
			endpoint.WithParams(
				parameter.StrParam("events", parameter.Query, parameter.WithDescription("Comma separated event types to subscribe to")),
			),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "HTTP_ERROR", Message: "Upgrade Required"}, "426", "Upgrade Required"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
