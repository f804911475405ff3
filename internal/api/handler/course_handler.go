package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/learnquest/gamification-system/internal/core/domain"
	"github.com/learnquest/gamification-system/internal/core/ports"
)

// CourseHandler handles the course catalog and enrollment.
type CourseHandler struct {
	catalog ports.CatalogService
	ledger  ports.LedgerService
}

func NewCourseHandler(catalog ports.CatalogService, ledger ports.LedgerService) *CourseHandler {
	return &CourseHandler{catalog: catalog, ledger: ledger}
}

type courseRequest struct {
	Title    string `json:"title" validate:"required"`
	Category string `json:"category"`
	Price    int64  `json:"price" validate:"gte=0"`
	Credits  int    `json:"credits" validate:"gte=0"`
}

type enrollResponse struct {
	CourseID        string `json:"course_id"`
	CourseTitle     string `json:"course_title"`
	Price           int64  `json:"price"`
	NewBalance      int64  `json:"new_balance"`
	AlreadyEnrolled bool   `json:"already_enrolled"`
	EnrolledAt      string `json:"enrolled_at"`
}

// List handles GET /v1/courses with optional creator_id and category filters.
//
// @Summary      List courses
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        creator_id  query     string  false  "Only courses owned by this creator"
// @Param        category    query     string  false  "Only courses in this category"
// @Success      200         {array}   domain.Course
// @Failure      401         {object}  errorResponse
// @Router       /v1/courses [get]
func (h *CourseHandler) List(c echo.Context) error {
	courses, err := h.catalog.ListCourses(c.Request().Context(), ports.ListCoursesFilter{
		CreatorID: c.QueryParam("creator_id"),
		Category:  c.QueryParam("category"),
	})
	if err != nil {
		return err
	}
	if courses == nil {
		courses = []*domain.Course{}
	}
	return c.JSON(http.StatusOK, courses)
}

// Get handles GET /v1/courses/:id.
//
// @Summary      Get a course
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Course ID"
// @Success      200  {object}  domain.Course
// @Failure      404  {object}  errorResponse
// @Router       /v1/courses/{id} [get]
func (h *CourseHandler) Get(c echo.Context) error {
	course, err := h.catalog.GetCourse(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, course)
}

// Create handles POST /v1/courses. The caller becomes the course creator.
//
// @Summary      Create a course (teacher or admin)
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      courseRequest  true  "Course details"
// @Success      201   {object}  domain.Course
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/courses [post]
func (h *CourseHandler) Create(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req courseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	course, err := h.catalog.CreateCourse(c.Request().Context(), ports.CreateCourseInput{
		Title:     req.Title,
		Category:  req.Category,
		Price:     req.Price,
		Credits:   req.Credits,
		CreatorID: userID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, course)
}

// Update handles PUT /v1/courses/:id. Only the creator or an admin may edit;
// the new price applies to future enrollments only.
//
// @Summary      Update a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Course ID"
// @Param        body  body      courseRequest  true  "Course details"
// @Success      200   {object}  domain.Course
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/courses/{id} [put]
func (h *CourseHandler) Update(c echo.Context) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req courseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	course, err := h.catalog.UpdateCourse(c.Request().Context(), ports.UpdateCourseInput{
		CourseID:      c.Param("id"),
		Title:         req.Title,
		Category:      req.Category,
		Price:         req.Price,
		Credits:       req.Credits,
		RequesterID:   userID,
		RequesterRole: role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, course)
}

// Delete handles DELETE /v1/courses/:id.
//
// @Summary      Delete a course
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Course ID"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/courses/{id} [delete]
func (h *CourseHandler) Delete(c echo.Context) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteCourse(c.Request().Context(), c.Param("id"), userID, role); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Enroll handles POST /v1/courses/:id/enroll. Free courses enroll without a
// balance check; re-enrolling is a silent no-op.
//
// @Summary      Enroll in a course
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Course ID"
// @Success      200  {object}  enrollResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/courses/{id}/enroll [post]
func (h *CourseHandler) Enroll(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	result, err := h.ledger.EnrollCourse(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, enrollResponse{
		CourseID:        result.CourseID,
		CourseTitle:     result.CourseTitle,
		Price:           result.Price,
		NewBalance:      result.NewBalance,
		AlreadyEnrolled: result.AlreadyEnrolled,
		EnrolledAt:      result.EnrolledAt.UTC().Format(time.RFC3339),
	})
}
