// Package memory is an in-process implementation of the stores. It keeps
// the same unique and cascade rules as the MySQL schema and evaluates list
// directives with query.Directive.Match.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"devcamper/internal/domain"
	"devcamper/internal/domain/models"
	"devcamper/internal/query"
	"devcamper/internal/utils"
)

type Store struct {
	mu        sync.RWMutex
	seq       int64
	users     map[int64]models.User
	bootcamps map[int64]models.Bootcamp
	courses   map[int64]models.Course
	reviews   map[int64]models.Review
}

func New() *Store {
	return &Store{
		users:     map[int64]models.User{},
		bootcamps: map[int64]models.Bootcamp{},
		courses:   map[int64]models.Course{},
		reviews:   map[int64]models.Review{},
	}
}

func (s *Store) Users() *UserStore         { return &UserStore{s} }
func (s *Store) Bootcamps() *BootcampStore { return &BootcampStore{s} }
func (s *Store) Courses() *CourseStore     { return &CourseStore{s} }
func (s *Store) Reviews() *ReviewStore     { return &ReviewStore{s} }

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// deleteBootcamp cascades to courses and reviews. Caller holds the lock.
func (s *Store) deleteBootcamp(id int64) {
	delete(s.bootcamps, id)
	for cid, c := range s.courses {
		if c.BootcampID == id {
			delete(s.courses, cid)
		}
	}
	for rid, r := range s.reviews {
		if r.BootcampID == id {
			delete(s.reviews, rid)
		}
	}
}

func duplicate() error {
	return domain.ConflictError{Msg: "Duplicate field value entered"}
}

func missingRef() error {
	return domain.ValidationError{Msg: "Referenced record does not exist"}
}

// paginate filters, orders and windows items the way the SQL store does.
func paginate[T any](items []T, d query.Directive) ([]T, int, error) {
	type entry struct {
		item T
		rec  query.Record
	}
	kept := make([]entry, 0, len(items))
	for _, it := range items {
		rec, err := query.ToRecord(it)
		if err != nil {
			return nil, 0, err
		}
		if d.Match(rec) {
			kept = append(kept, entry{it, rec})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return d.Less(kept[i].rec, kept[j].rec) })

	total := len(kept)
	start := d.Skip()
	if start < 0 || start > total {
		start = total
	}
	end := total
	if d.Limit < total-start {
		end = start + d.Limit
	}
	out := make([]T, 0, end-start)
	for _, e := range kept[start:end] {
		out = append(out, e.item)
	}
	return out, total, nil
}

func toAny[T any](items []T) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, it)
	}
	return out
}

func checkExpansions(entity string, expand []string, allowed string) error {
	for _, e := range expand {
		if e != allowed {
			return fmt.Errorf("%s: unknown expansion %q", entity, e)
		}
	}
	return nil
}

func average(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	return &avg
}

// UserStore

type UserStore struct{ s *Store }

func (u *UserStore) FindByID(_ context.Context, id int64) (models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	user, ok := u.s.users[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "User", ID: id}
	}
	return user, nil
}

func (u *UserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	email = utils.NormalizeEmail(email)
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	for _, user := range u.s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, domain.NotFoundError{Resource: "User"}
}

func (u *UserStore) FindByResetToken(_ context.Context, digest string, now time.Time) (models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	for _, user := range u.s.users {
		if digest != "" && user.ResetPasswordToken == digest &&
			user.ResetPasswordExpire != nil && user.ResetPasswordExpire.After(now) {
			return user, nil
		}
	}
	return models.User{}, domain.NotFoundError{Resource: "User"}
}

func (u *UserStore) Create(_ context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user.Email = utils.NormalizeEmail(user.Email)
	for _, other := range u.s.users {
		if other.Email == user.Email {
			return duplicate()
		}
	}
	user.ID = u.s.nextID()
	u.s.users[user.ID] = *user
	return nil
}

func (u *UserStore) Update(_ context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	old, ok := u.s.users[user.ID]
	if !ok {
		return domain.NotFoundError{Resource: "User", ID: user.ID}
	}
	user.Email = utils.NormalizeEmail(user.Email)
	for id, other := range u.s.users {
		if id != user.ID && other.Email == user.Email {
			return duplicate()
		}
	}
	user.CreatedAt = old.CreatedAt
	u.s.users[user.ID] = *user
	return nil
}

func (u *UserStore) Delete(_ context.Context, id int64) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, ok := u.s.users[id]; !ok {
		return domain.NotFoundError{Resource: "User", ID: id}
	}
	delete(u.s.users, id)
	for bid, b := range u.s.bootcamps {
		if b.UserID == id {
			u.s.deleteBootcamp(bid)
		}
	}
	for cid, c := range u.s.courses {
		if c.UserID == id {
			delete(u.s.courses, cid)
		}
	}
	for rid, r := range u.s.reviews {
		if r.UserID == id {
			delete(u.s.reviews, rid)
		}
	}
	return nil
}

func (u *UserStore) PurgeExpiredResets(_ context.Context, now time.Time) (int64, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	var n int64
	for id, user := range u.s.users {
		if user.ResetPasswordExpire != nil && !user.ResetPasswordExpire.After(now) {
			user.ClearReset()
			u.s.users[id] = user
			n++
		}
	}
	return n, nil
}

func (u *UserStore) Schema() query.Schema { return models.UserSchema }

func (u *UserStore) Query(_ context.Context, d query.Directive, expand []string) ([]any, int, error) {
	if err := checkExpansions("users", expand, ""); err != nil {
		return nil, 0, err
	}
	u.s.mu.RLock()
	all := make([]models.User, 0, len(u.s.users))
	for _, user := range u.s.users {
		all = append(all, user)
	}
	u.s.mu.RUnlock()

	page, total, err := paginate(all, d)
	if err != nil {
		return nil, 0, err
	}
	return toAny(page), total, nil
}

// BootcampStore

type BootcampStore struct{ s *Store }

func cloneBootcamp(b models.Bootcamp) models.Bootcamp {
	b.Careers = append([]string(nil), b.Careers...)
	if b.Location != nil {
		loc := *b.Location
		loc.Coordinates = append([]float64(nil), loc.Coordinates...)
		b.Location = &loc
	}
	b.Courses = nil
	return b
}

func (b *BootcampStore) FindByID(_ context.Context, id int64) (models.Bootcamp, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	camp, ok := b.s.bootcamps[id]
	if !ok {
		return models.Bootcamp{}, domain.NotFoundError{Resource: "Bootcamp", ID: id}
	}
	return cloneBootcamp(camp), nil
}

func (b *BootcampStore) CountByOwner(_ context.Context, userID int64) (int, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	n := 0
	for _, camp := range b.s.bootcamps {
		if camp.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (b *BootcampStore) nameTaken(id int64, name string) bool {
	for other, camp := range b.s.bootcamps {
		if other != id && strings.EqualFold(camp.Name, name) {
			return true
		}
	}
	return false
}

func (b *BootcampStore) Create(_ context.Context, camp *models.Bootcamp) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.nameTaken(0, camp.Name) {
		return duplicate()
	}
	if _, ok := b.s.users[camp.UserID]; !ok {
		return missingRef()
	}
	camp.ID = b.s.nextID()
	b.s.bootcamps[camp.ID] = cloneBootcamp(*camp)
	return nil
}

func (b *BootcampStore) Update(_ context.Context, camp *models.Bootcamp) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	old, ok := b.s.bootcamps[camp.ID]
	if !ok {
		return domain.NotFoundError{Resource: "Bootcamp", ID: camp.ID}
	}
	if b.nameTaken(camp.ID, camp.Name) {
		return duplicate()
	}
	next := cloneBootcamp(*camp)
	next.UserID = old.UserID
	next.CreatedAt = old.CreatedAt
	b.s.bootcamps[camp.ID] = next
	return nil
}

func (b *BootcampStore) set(id int64, fn func(*models.Bootcamp)) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	camp, ok := b.s.bootcamps[id]
	if !ok {
		return domain.NotFoundError{Resource: "Bootcamp", ID: id}
	}
	fn(&camp)
	b.s.bootcamps[id] = camp
	return nil
}

func (b *BootcampStore) SetPhoto(_ context.Context, id int64, photo string) error {
	return b.set(id, func(c *models.Bootcamp) { c.Photo = photo })
}

func (b *BootcampStore) SetAverageCost(_ context.Context, id int64, v *float64) error {
	return b.set(id, func(c *models.Bootcamp) { c.AverageCost = v })
}

func (b *BootcampStore) SetAverageRating(_ context.Context, id int64, v *float64) error {
	return b.set(id, func(c *models.Bootcamp) { c.AverageRating = v })
}

func (b *BootcampStore) Delete(_ context.Context, id int64) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if _, ok := b.s.bootcamps[id]; !ok {
		return domain.NotFoundError{Resource: "Bootcamp", ID: id}
	}
	b.s.deleteBootcamp(id)
	return nil
}

const earthRadiusMiles = 3963.0

func (b *BootcampStore) WithinRadius(_ context.Context, lat, lng, miles float64) ([]models.Bootcamp, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	out := []models.Bootcamp{}
	for _, camp := range b.s.bootcamps {
		if camp.Location == nil || len(camp.Location.Coordinates) != 2 {
			continue
		}
		if haversine(lat, lng, camp.Location.Lat(), camp.Location.Lng()) <= miles {
			out = append(out, cloneBootcamp(camp))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func haversine(lat1, lng1, lat2, lng2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(a))
}

func (b *BootcampStore) Schema() query.Schema { return models.BootcampSchema }

func (b *BootcampStore) Query(_ context.Context, d query.Directive, expand []string) ([]any, int, error) {
	if err := checkExpansions("bootcamps", expand, "courses"); err != nil {
		return nil, 0, err
	}
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()

	all := make([]models.Bootcamp, 0, len(b.s.bootcamps))
	for _, camp := range b.s.bootcamps {
		all = append(all, cloneBootcamp(camp))
	}
	page, total, err := paginate(all, d)
	if err != nil {
		return nil, 0, err
	}
	if len(expand) > 0 {
		for i := range page {
			page[i].Courses = b.s.coursesOf(page[i].ID)
		}
	}
	return toAny(page), total, nil
}

// coursesOf lists a bootcamp's courses by id. Caller holds the lock.
func (s *Store) coursesOf(bootcampID int64) []models.Course {
	out := []models.Course{}
	for _, c := range s.courses {
		if c.BootcampID == bootcampID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CourseStore

type CourseStore struct{ s *Store }

func (c *CourseStore) FindByID(_ context.Context, id int64) (models.Course, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	course, ok := c.s.courses[id]
	if !ok {
		return models.Course{}, domain.NotFoundError{Resource: "Course", ID: id}
	}
	return course, nil
}

func (c *CourseStore) ListByBootcamp(_ context.Context, bootcampID int64) ([]models.Course, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	return c.s.coursesOf(bootcampID), nil
}

func (c *CourseStore) Create(_ context.Context, course *models.Course) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.bootcamps[course.BootcampID]; !ok {
		return missingRef()
	}
	if _, ok := c.s.users[course.UserID]; !ok {
		return missingRef()
	}
	course.ID = c.s.nextID()
	stored := *course
	stored.Bootcamp = nil
	c.s.courses[course.ID] = stored
	return nil
}

func (c *CourseStore) Update(_ context.Context, course *models.Course) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	old, ok := c.s.courses[course.ID]
	if !ok {
		return domain.NotFoundError{Resource: "Course", ID: course.ID}
	}
	next := *course
	next.Bootcamp = nil
	next.BootcampID = old.BootcampID
	next.UserID = old.UserID
	next.CreatedAt = old.CreatedAt
	c.s.courses[course.ID] = next
	return nil
}

func (c *CourseStore) Delete(_ context.Context, id int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.courses[id]; !ok {
		return domain.NotFoundError{Resource: "Course", ID: id}
	}
	delete(c.s.courses, id)
	return nil
}

func (c *CourseStore) AverageTuition(_ context.Context, bootcampID int64) (*float64, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	var values []float64
	for _, course := range c.s.courses {
		if course.BootcampID == bootcampID {
			values = append(values, course.Tuition)
		}
	}
	return average(values), nil
}

func (c *CourseStore) Schema() query.Schema { return models.CourseSchema }

func (c *CourseStore) Query(_ context.Context, d query.Directive, expand []string) ([]any, int, error) {
	if err := checkExpansions("courses", expand, "bootcamp"); err != nil {
		return nil, 0, err
	}
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	all := make([]models.Course, 0, len(c.s.courses))
	for _, course := range c.s.courses {
		all = append(all, course)
	}
	page, total, err := paginate(all, d)
	if err != nil {
		return nil, 0, err
	}
	if len(expand) > 0 {
		for i := range page {
			if camp, ok := c.s.bootcamps[page[i].BootcampID]; ok {
				page[i].Bootcamp = camp.Summary()
			}
		}
	}
	return toAny(page), total, nil
}

// ReviewStore

type ReviewStore struct{ s *Store }

func (r *ReviewStore) FindByID(_ context.Context, id int64) (models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	review, ok := r.s.reviews[id]
	if !ok {
		return models.Review{}, domain.NotFoundError{Resource: "Review", ID: id}
	}
	return review, nil
}

func (r *ReviewStore) ListByBootcamp(_ context.Context, bootcampID int64) ([]models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Review{}
	for _, review := range r.s.reviews {
		if review.BootcampID == bootcampID {
			out = append(out, review)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ReviewStore) Create(_ context.Context, review *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bootcamps[review.BootcampID]; !ok {
		return missingRef()
	}
	if _, ok := r.s.users[review.UserID]; !ok {
		return missingRef()
	}
	for _, other := range r.s.reviews {
		if other.BootcampID == review.BootcampID && other.UserID == review.UserID {
			return duplicate()
		}
	}
	review.ID = r.s.nextID()
	stored := *review
	stored.Bootcamp = nil
	r.s.reviews[review.ID] = stored
	return nil
}

func (r *ReviewStore) Update(_ context.Context, review *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.reviews[review.ID]
	if !ok {
		return domain.NotFoundError{Resource: "Review", ID: review.ID}
	}
	next := *review
	next.Bootcamp = nil
	next.BootcampID = old.BootcampID
	next.UserID = old.UserID
	next.CreatedAt = old.CreatedAt
	r.s.reviews[review.ID] = next
	return nil
}

func (r *ReviewStore) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[id]; !ok {
		return domain.NotFoundError{Resource: "Review", ID: id}
	}
	delete(r.s.reviews, id)
	return nil
}

func (r *ReviewStore) AverageRating(_ context.Context, bootcampID int64) (*float64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var values []float64
	for _, review := range r.s.reviews {
		if review.BootcampID == bootcampID {
			values = append(values, float64(review.Rating))
		}
	}
	return average(values), nil
}

func (r *ReviewStore) Schema() query.Schema { return models.ReviewSchema }

func (r *ReviewStore) Query(_ context.Context, d query.Directive, expand []string) ([]any, int, error) {
	if err := checkExpansions("reviews", expand, "bootcamp"); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]models.Review, 0, len(r.s.reviews))
	for _, review := range r.s.reviews {
		all = append(all, review)
	}
	page, total, err := paginate(all, d)
	if err != nil {
		return nil, 0, err
	}
	if len(expand) > 0 {
		for i := range page {
			if camp, ok := r.s.bootcamps[page[i].BootcampID]; ok {
				page[i].Bootcamp = camp.Summary()
			}
		}
	}
	return toAny(page), total, nil
}
