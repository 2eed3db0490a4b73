package course

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/imaging"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

const (
	defaultLimit = 12
	maxLimit     = 100
)

type courseRepo interface {
	NewCourse(ctx context.Context, course *models.Course) error
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	CourseBySlug(ctx context.Context, slug string) (*models.Course, error)
	ListCourses(ctx context.Context, f models.CourseFilter) ([]models.Course, int, error)
	CoursesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Course, error)
	UpdateCourse(ctx context.Context, id uuid.UUID, u models.CourseUpdate) (*models.Course, error)
	DeleteCourse(ctx context.Context, id uuid.UUID) error
	ChangeStatus(ctx context.Context, id uuid.UUID, status string) error
	SetLogo(ctx context.Context, id uuid.UUID, objectKey string) error
}

type searchRepo interface {
	Index(ctx context.Context, course models.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query, level string, limit, offset int) ([]uuid.UUID, int, error)
}

type logoRepo interface {
	GetLogoURL(ctx context.Context, objectKey string) (string, error)
	UploadLogo(ctx context.Context, courseID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (objectKey string, err error)
	DeleteLogo(ctx context.Context, objectKey string) error
}

type CourseService struct {
	log          logger.Log
	courseRepo   courseRepo
	searchRepo   searchRepo
	logoRepo     logoRepo
	maxLogoBytes int64
}

func NewCourseService(log logger.Log, courseRepo courseRepo, searchRepo searchRepo, logoRepo logoRepo, maxLogoBytes int64) *CourseService {
	return &CourseService{
		log:          log,
		courseRepo:   courseRepo,
		searchRepo:   searchRepo,
		logoRepo:     logoRepo,
		maxLogoBytes: maxLogoBytes,
	}
}

func validatePricing(price, discount float64) error {
	if price < 0 {
		return app_errors.ErrInvalidPrice
	}
	if discount < 0 || discount > 100 {
		return app_errors.ErrInvalidDiscount
	}
	return nil
}

func (s *CourseService) CreateCourse(ctx context.Context, course models.Course) (*models.Course, error) {
	course.Title = strings.TrimSpace(course.Title)
	if course.Slug == "" {
		course.Slug = models.Slugify(course.Title)
	} else {
		course.Slug = models.Slugify(course.Slug)
	}
	if course.Slug == "" {
		return nil, app_errors.ErrInvalidSlug
	}
	if course.Level == "" {
		course.Level = models.LevelBeginner
	}
	if !models.ValidLevel(course.Level) {
		return nil, app_errors.ErrInvalidLevel
	}
	if course.Status == "" {
		course.Status = models.CourseStatusDraft
	}
	if !models.ValidCourseStatus(course.Status) {
		return nil, app_errors.ErrInvalidStatus
	}
	if err := validatePricing(course.Price, course.Discount); err != nil {
		return nil, err
	}
	course.Rating = 0
	course.ReviewCount = 0

	if err := s.courseRepo.NewCourse(ctx, &course); err != nil {
		return nil, err
	}
	s.syncIndex(ctx, course)
	return &course, nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, id uuid.UUID, u models.CourseUpdate) (*models.Course, error) {
	if u.Level != nil && !models.ValidLevel(*u.Level) {
		return nil, app_errors.ErrInvalidLevel
	}
	if u.Slug != nil {
		slug := models.Slugify(*u.Slug)
		if slug == "" {
			return nil, app_errors.ErrInvalidSlug
		}
		u.Slug = &slug
	}
	if u.Price != nil || u.Discount != nil {
		current, err := s.courseRepo.CourseByID(ctx, id)
		if err != nil {
			return nil, err
		}
		price, discount := current.Price, current.Discount
		if u.Price != nil {
			price = *u.Price
		}
		if u.Discount != nil {
			discount = *u.Discount
		}
		if err := validatePricing(price, discount); err != nil {
			return nil, err
		}
	}

	course, err := s.courseRepo.UpdateCourse(ctx, id, u)
	if err != nil {
		return nil, err
	}
	s.syncIndex(ctx, *course)
	s.attachLogoURL(ctx, course)
	return course, nil
}

// DeleteCourse removes the row, its search document and its logo. Chapters,
// topics, ratings and revision tests go with the row; enrollments stay.
func (s *CourseService) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.courseRepo.DeleteCourse(ctx, id); err != nil {
		return err
	}
	if err := s.searchRepo.Delete(ctx, id); err != nil {
		s.log.ErrorErr("failed to remove course from search index", err, "course_id", id)
	}
	if course.LogoObjectKey != "" {
		if err := s.logoRepo.DeleteLogo(ctx, course.LogoObjectKey); err != nil {
			s.log.ErrorErr("failed to delete course logo", err, "course_id", id)
		}
	}
	return nil
}

func (s *CourseService) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*models.Course, error) {
	if !models.ValidCourseStatus(status) {
		return nil, app_errors.ErrInvalidStatus
	}
	if err := s.courseRepo.ChangeStatus(ctx, id, status); err != nil {
		return nil, err
	}
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.syncIndex(ctx, *course)
	s.attachLogoURL(ctx, course)
	return course, nil
}

// syncIndex keeps only published courses searchable. Index failures are only logged.
func (s *CourseService) syncIndex(ctx context.Context, course models.Course) {
	var err error
	if course.Status == models.CourseStatusPublished {
		err = s.searchRepo.Index(ctx, course)
	} else {
		err = s.searchRepo.Delete(ctx, course.ID)
	}
	if err != nil {
		s.log.ErrorErr("failed to sync search index", err, "course_id", course.ID, "status", course.Status)
	}
}

func (s *CourseService) UploadCourseLogo(ctx context.Context, courseID uuid.UUID, filename string, reader io.Reader) (string, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(reader, s.maxLogoBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > s.maxLogoBytes {
		return "", app_errors.ErrFileSize
	}
	if !imaging.IsImage(data) {
		return "", app_errors.ErrNotImage
	}
	contentType = imaging.Sniff(data)

	objectKey, err := s.logoRepo.UploadLogo(ctx, courseID, filename, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		s.log.ErrorErr("failed to upload logo to storage", err)
		return "", err
	}
	if err = s.courseRepo.SetLogo(ctx, courseID, objectKey); err != nil {
		s.log.ErrorErr("failed to save logo key to db", err)
		return "", err
	}
	if course.LogoObjectKey != "" {
		if err := s.logoRepo.DeleteLogo(ctx, course.LogoObjectKey); err != nil {
			s.log.ErrorErr("failed to delete previous logo", err)
		}
	}

	url, err := s.logoRepo.GetLogoURL(ctx, objectKey)
	if err != nil {
		s.log.ErrorErr("failed to get presigned URL", err)
		return "", err
	}
	return url, nil
}

func (s *CourseService) attachLogoURL(ctx context.Context, course *models.Course) {
	if course.LogoObjectKey == "" {
		return
	}
	url, err := s.logoRepo.GetLogoURL(ctx, course.LogoObjectKey)
	if err != nil {
		s.log.ErrorErr("failed to get logo URL", err, "course_id", course.ID)
		return
	}
	course.LogoURL = url
}

// CourseByID returns any course. Public callers use PublishedCourse.
func (s *CourseService) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.attachLogoURL(ctx, course)
	return course, nil
}

func (s *CourseService) PublishedCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	course, err := s.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.Status != models.CourseStatusPublished {
		return nil, app_errors.ErrCourseNotFound
	}
	return course, nil
}

func (s *CourseService) PublishedCourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	course, err := s.courseRepo.CourseBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if course.Status != models.CourseStatusPublished {
		return nil, app_errors.ErrCourseNotFound
	}
	s.attachLogoURL(ctx, course)
	return course, nil
}

func normalizePage(f *models.CourseFilter) {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// ListCourses is the admin listing: every status, optional filters, Postgres only.
func (s *CourseService) ListCourses(ctx context.Context, f models.CourseFilter) ([]models.Course, int, error) {
	normalizePage(&f)
	courses, total, err := s.courseRepo.ListCourses(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	for i := range courses {
		s.attachLogoURL(ctx, &courses[i])
	}
	return courses, total, nil
}

// PublishedCourses lists published courses. A query goes to the search index
// first and falls back to a Postgres ILIKE match when the index is unavailable.
func (s *CourseService) PublishedCourses(ctx context.Context, f models.CourseFilter) ([]models.Course, int, error) {
	normalizePage(&f)
	f.Status = models.CourseStatusPublished

	if f.Query != "" {
		courses, total, err := s.searchPublished(ctx, f)
		if err == nil {
			return courses, total, nil
		}
		s.log.ErrorErr("search failed, falling back to postgres", err, "query", f.Query)
	}
	return s.ListCourses(ctx, f)
}

func (s *CourseService) searchPublished(ctx context.Context, f models.CourseFilter) ([]models.Course, int, error) {
	ids, total, err := s.searchRepo.Search(ctx, f.Query, f.Level, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return []models.Course{}, total, nil
	}
	found, err := s.courseRepo.CoursesByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	courses := make([]models.Course, 0, len(found))
	for _, c := range found {
		if c.Status != models.CourseStatusPublished {
			continue
		}
		s.attachLogoURL(ctx, &c)
		courses = append(courses, c)
	}
	return courses, total, nil
}
