// Package testutil provides a fake Schoolweb backend for the client-layer
// tests: a real echo server with the REST surface, envelope shapes and error
// bodies of the production API, backed by in-memory tables.
package testutil

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/xuri/excelize/v2"

	"github.com/realangry/schoolweb/core/student"
	"github.com/realangry/schoolweb/core/user"
)

const (
	// Seeded admin credentials.
	AdminEmail    = "admin@hmps.edu"
	AdminPassword = "admin123"

	secretKey = "schoolweb-test-secret"
)

// Server is the fake backend. All fields are guarded by mu; handlers mutate
// the tables in place so tests can assert on server-side state too.
type Server struct {
	app *echo.Echo
	srv *httptest.Server

	mu        sync.Mutex
	users     []user.User
	passwords map[string]string // email -> password
	students  []student.Student
}

func NewServer(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		app:       echo.New(),
		passwords: make(map[string]string),
	}
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.setup()
	s.seed()

	s.srv = httptest.NewServer(s.app)
	t.Cleanup(s.srv.Close)
	return s
}

// BaseURL is the value to hand to restapi.Options.
func (s *Server) BaseURL() string { return s.srv.URL + "/api" }

func (s *Server) setup() {
	api := s.app.Group("/api")

	api.POST("/auth/login", s.login)
	api.POST("/auth/register", s.register, s.requireAuth, s.requireAdmin)
	api.GET("/auth/verify", s.verify, s.requireAuth)

	api.GET("/users", s.listUsers, s.requireAuth, s.requireAdmin)
	api.POST("/users", s.createUser, s.requireAuth, s.requireAdmin)
	api.PUT("/users/:id", s.updateUser, s.requireAuth, s.requireAdmin)
	api.DELETE("/users/:id", s.deleteUser, s.requireAuth, s.requireAdmin)

	api.GET("/students", s.listStudents, s.requireAuth)
	api.POST("/students", s.createStudent, s.requireAuth)
	api.PUT("/students/:id", s.updateStudent, s.requireAuth)
	api.DELETE("/students/:id", s.deleteStudent, s.requireAuth)

	api.GET("/export/students/:id", s.exportStudent, s.requireAuth)
	api.POST("/export/reports/:type", s.exportReport, s.requireAuth)
}

func (s *Server) seed() {
	now := time.Now().UTC()
	admin := user.User{
		ID:          uuid.NewString(),
		DisplayName: "Admin User",
		Email:       AdminEmail,
		Role:        user.RoleAdmin,
		Department:  "Administration",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	teacher := user.User{
		ID:          uuid.NewString(),
		DisplayName: "Asha Teacher",
		Email:       "asha@hmps.edu",
		Role:        user.RoleTeacher,
		Department:  "Science",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.users = []user.User{admin, teacher}
	s.passwords[AdminEmail] = AdminPassword
	s.passwords[teacher.Email] = "teacher1"

	for i := 1; i <= 10; i++ {
		s.students = append(s.students, student.Student{
			ID:          fmt.Sprintf("STU%04d", i),
			Name:        fmt.Sprintf("Student %02d", i),
			Class:       fmt.Sprintf("%d", 5+i%5),
			Section:     string(rune('A' + i%3)),
			RollNumber:  fmt.Sprintf("%02d", i),
			Gender:      "male",
			JoiningDate: now.AddDate(0, -i, 0),
			Status:      student.StatusActive,
		})
	}
}

// Credentials builds a login input.
func Credentials(email, password string) user.Credentials {
	return user.Credentials{Email: email, Password: password}
}

// AdminCredentials returns the seeded administrator's login input.
func AdminCredentials() user.Credentials {
	return Credentials(AdminEmail, AdminPassword)
}

// Auth helpers

// Token mints a signed bearer token for usr, for tests that bypass login.
func (s *Server) Token(t *testing.T, usr user.User) string {
	t.Helper()
	claims := jwt.StandardClaims{
		Subject:   usr.ID,
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	return token
}

// Admin returns the seeded administrator record.
func (s *Server) Admin() user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[0]
}

// Users returns a copy of the server-side user table.
func (s *Server) Users() []user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]user.User, len(s.users))
	copy(out, s.users)
	return out
}

// Students returns a copy of the server-side student table.
func (s *Server) Students() []student.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]student.Student, len(s.students))
	copy(out, s.students)
	return out
}

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing or malformed token"})
		}
		claims := jwt.StandardClaims{}
		_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), &claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		})
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		s.mu.Lock()
		var found *user.User
		for i := range s.users {
			if s.users[i].ID == claims.Subject {
				u := s.users[i]
				found = &u
				break
			}
		}
		s.mu.Unlock()

		if found == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}
		c.Set("user", *found)
		return next(c)
	}
}

func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if usr, ok := c.Get("user").(user.User); !ok || !usr.IsAdmin() {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
		}
		return next(c)
	}
}

// Handlers

func (s *Server) login(c echo.Context) error {
	var creds user.Credentials
	if err := c.Bind(&creds); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == creds.Email && s.passwords[u.Email] == creds.Password {
			claims := jwt.StandardClaims{
				Subject:   u.ID,
				IssuedAt:  time.Now().Unix(),
				ExpiresAt: time.Now().Add(7 * 24 * time.Hour).Unix(),
			}
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token signing failed"})
			}
			return c.JSON(http.StatusOK, echo.Map{"user": u, "token": token})
		}
	}
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
}

func (s *Server) register(c echo.Context) error {
	var nu user.NewUser
	if err := c.Bind(&nu); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == nu.Email {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a user with this email already exists"})
		}
	}

	now := time.Now().UTC()
	id := nu.UserID
	if id == "" {
		id = uuid.NewString()
	}
	usr := user.User{
		ID:          id,
		DisplayName: nu.DisplayName,
		Email:       nu.Email,
		Role:        nu.Role,
		Department:  nu.Department,
		Position:    nu.Position,
		Phone:       nu.Phone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.users = append(s.users, usr)
	s.passwords[usr.Email] = nu.Password
	return c.JSON(http.StatusCreated, echo.Map{"data": usr})
}

func (s *Server) verify(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"user": c.Get("user")})
}

func (s *Server) listUsers(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": s.users})
}

func (s *Server) createUser(c echo.Context) error {
	return s.register(c)
}

func (s *Server) updateUser(c echo.Context) error {
	var uu user.UpdateUser
	if err := c.Bind(&uu); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID != c.Param("id") {
			continue
		}
		if uu.DisplayName != "" {
			u.DisplayName = uu.DisplayName
		}
		if uu.Email != "" {
			u.Email = uu.Email
		}
		if uu.Role != "" {
			u.Role = uu.Role
		}
		if uu.Department != "" {
			u.Department = uu.Department
		}
		if uu.Position != "" {
			u.Position = uu.Position
		}
		if uu.Phone != "" {
			u.Phone = uu.Phone
		}
		u.UpdatedAt = time.Now().UTC()
		s.users[i] = u
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": u})
	}
	return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
}

func (s *Server) deleteUser(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID == c.Param("id") {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return c.JSON(http.StatusOK, echo.Map{"success": true})
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
}

func (s *Server) listStudents(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, echo.Map{"students": s.students})
}

func (s *Server) createStudent(c echo.Context) error {
	var ns student.NewStudent
	if err := c.Bind(&ns); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec := student.Student{
		ID:            fmt.Sprintf("STU%04d", len(s.students)+1),
		Name:          ns.Name,
		Class:         ns.Class,
		Section:       ns.Section,
		RollNumber:    ns.RollNumber,
		Gender:        ns.Gender,
		FatherName:    ns.FatherName,
		MotherName:    ns.MotherName,
		ContactNumber: ns.ContactNumber,
		Email:         ns.Email,
		Address:       ns.Address,
		JoiningDate:   ns.JoiningDate,
		Status:        ns.Status,
	}
	s.students = append(s.students, rec)
	return c.JSON(http.StatusCreated, echo.Map{"data": rec})
}

func (s *Server) updateStudent(c echo.Context) error {
	var us student.UpdateStudent
	if err := c.Bind(&us); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.students {
		if rec.ID != c.Param("id") {
			continue
		}
		if us.Name != "" {
			rec.Name = us.Name
		}
		if us.Class != "" {
			rec.Class = us.Class
		}
		if us.Section != "" {
			rec.Section = us.Section
		}
		if us.RollNumber != "" {
			rec.RollNumber = us.RollNumber
		}
		if us.Status != "" {
			rec.Status = us.Status
		}
		if us.ContactNumber != "" {
			rec.ContactNumber = us.ContactNumber
		}
		if us.Email != "" {
			rec.Email = us.Email
		}
		s.students[i] = rec
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": rec})
	}
	return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
}

func (s *Server) deleteStudent(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.students {
		if rec.ID == c.Param("id") {
			s.students = append(s.students[:i], s.students[i+1:]...)
			return c.JSON(http.StatusOK, echo.Map{"success": true})
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
}

func (s *Server) exportStudent(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.students {
		if rec.ID == c.Param("id") {
			return s.exportPayload(c, "Student", [][]string{
				{"ID", "Name", "Class", "Roll Number", "Status"},
				{rec.ID, rec.Name, rec.Class, rec.RollNumber, rec.Status},
			})
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
}

func (s *Server) exportReport(c echo.Context) error {
	return s.exportPayload(c, "Report", [][]string{
		{"Type", "Generated"},
		{c.Param("type"), time.Now().UTC().Format(time.RFC3339)},
	})
}

// exportPayload renders rows as a genuine xlsx workbook, or as a minimal
// pdf-shaped document, depending on the requested format.
func (s *Server) exportPayload(c echo.Context, sheet string, rows [][]string) error {
	switch c.QueryParam("format") {
	case "excel":
		f := excelize.NewFile()
		defer f.Close()
		f.SetSheetName(f.GetSheetName(0), sheet)
		for i, row := range rows {
			for j, val := range row {
				cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
				_ = f.SetCellValue(sheet, cell, val)
			}
		}
		var buf bytes.Buffer
		if err := f.Write(&buf); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
		}
		return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	case "pdf":
		var buf bytes.Buffer
		buf.WriteString("%PDF-1.4\n")
		for _, row := range rows {
			buf.WriteString(strings.Join(row, " ") + "\n")
		}
		buf.WriteString("%%EOF\n")
		return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported format"})
}
