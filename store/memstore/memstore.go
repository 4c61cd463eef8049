// Package memstore is an in-memory implementation of the store contracts,
// used for local runs with DB_DRIVER=memory and in handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/rental_listing_platform/filters"
	"github.com/dcode-github/rental_listing_platform/models"
	"github.com/dcode-github/rental_listing_platform/store"
)

// DB holds every collection behind one lock. Documents keep insertion order.
type DB struct {
	mu         sync.RWMutex
	properties []models.Property
	reviews    []models.Review
	users      []models.User
	contacts   []models.Contact
	blogs      []models.Blog

	favorites       []models.Favorite
	recommendations []models.Recommendation
}

func New() *DB {
	return &DB{}
}

// Stores returns store views over db.
func (db *DB) Stores() store.Stores {
	return store.Stores{
		Properties: &propertyStore{db},
		Reviews:    &reviewStore{db},
		Users:      &userStore{db},
		Contacts:   &contactStore{db},
		Blogs:      &blogStore{db},

		Favorites:       &favoriteStore{db},
		Recommendations: &recommendationStore{db},
	}
}

func newID(id primitive.ObjectID) primitive.ObjectID {
	if id.IsZero() {
		return primitive.NewObjectID()
	}
	return id
}

func cloneProperty(p models.Property) models.Property {
	p.Images = append([]string(nil), p.Images...)
	p.Reviews = append([]primitive.ObjectID(nil), p.Reviews...)
	return p
}

type propertyStore struct{ db *DB }

func (s *propertyStore) indexOf(id primitive.ObjectID) int {
	for i := range s.db.properties {
		if s.db.properties[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *propertyStore) Create(ctx context.Context, p *models.Property) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p.ID = newID(p.ID)
	for _, existing := range s.db.properties {
		if existing.ID == p.ID || (p.Slug != "" && existing.Slug == p.Slug) {
			return store.ErrDuplicate
		}
	}
	if p.Reviews == nil {
		p.Reviews = []primitive.ObjectID{}
	}
	s.db.properties = append(s.db.properties, cloneProperty(*p))
	return nil
}

func (s *propertyStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	p := cloneProperty(s.db.properties[i])
	return &p, nil
}

func (s *propertyStore) FindDetail(ctx context.Context, id primitive.ObjectID) (*models.PropertyDetail, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	detail := &models.PropertyDetail{Property: cloneProperty(s.db.properties[i]), Reviews: []models.Review{}}
	for _, rid := range detail.Property.Reviews {
		for _, r := range s.db.reviews {
			if r.ID == rid {
				detail.Reviews = append(detail.Reviews, r)
				break
			}
		}
	}
	return detail, nil
}

func (s *propertyStore) find(match func(*models.Property) bool) []models.Property {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := []models.Property{}
	for i := range s.db.properties {
		if match(&s.db.properties[i]) {
			out = append(out, cloneProperty(s.db.properties[i]))
		}
	}
	return out
}

func (s *propertyStore) FindAll(ctx context.Context) ([]models.Property, error) {
	return s.find(func(*models.Property) bool { return true }), nil
}

func (s *propertyStore) FindByCity(ctx context.Context, city string) ([]models.Property, error) {
	return s.find(func(p *models.Property) bool { return p.City == city }), nil
}

func (s *propertyStore) FindByLocality(ctx context.Context, locality string) ([]models.Property, error) {
	return s.find(func(p *models.Property) bool { return p.Locality == locality }), nil
}

func (s *propertyStore) FindBySlug(ctx context.Context, slug string) (*models.Property, error) {
	found := s.find(func(p *models.Property) bool { return p.Slug == slug })
	if len(found) == 0 {
		return nil, store.ErrNotFound
	}
	return &found[0], nil
}

func (s *propertyStore) Filter(ctx context.Context, f filters.PropertyFilter) ([]models.Property, error) {
	matched := s.find(f.Matches)
	skip := f.Skip()
	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(matched)) {
		return []models.Property{}, nil
	}
	matched = matched[skip:]
	if f.Limit > 0 && int64(len(matched)) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func (s *propertyStore) Replace(ctx context.Context, p *models.Property) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	i := s.indexOf(p.ID)
	if i < 0 {
		return store.ErrNotFound
	}
	s.db.properties[i] = cloneProperty(*p)
	return nil
}

func (s *propertyStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return store.ErrNotFound
	}
	s.db.properties = append(s.db.properties[:i], s.db.properties[i+1:]...)
	return nil
}

func (s *propertyStore) PushReview(ctx context.Context, propertyID, reviewID primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	i := s.indexOf(propertyID)
	if i < 0 {
		return store.ErrNotFound
	}
	s.db.properties[i].Reviews = append(s.db.properties[i].Reviews, reviewID)
	s.db.properties[i].UpdatedAt = time.Now()
	return nil
}

func (s *propertyStore) PullReview(ctx context.Context, propertyID, reviewID primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	i := s.indexOf(propertyID)
	if i < 0 {
		return nil
	}
	kept := s.db.properties[i].Reviews[:0]
	for _, rid := range s.db.properties[i].Reviews {
		if rid != reviewID {
			kept = append(kept, rid)
		}
	}
	s.db.properties[i].Reviews = kept
	return nil
}

type reviewStore struct{ db *DB }

func (s *reviewStore) Create(ctx context.Context, r *models.Review) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	r.ID = newID(r.ID)
	s.db.reviews = append(s.db.reviews, *r)
	return nil
}

func (s *reviewStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, r := range s.db.reviews {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *reviewStore) FindAll(ctx context.Context) ([]models.Review, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return append([]models.Review{}, s.db.reviews...), nil
}

func (s *reviewStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for i, r := range s.db.reviews {
		if r.ID == id {
			s.db.reviews = append(s.db.reviews[:i], s.db.reviews[i+1:]...)
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

type userStore struct{ db *DB }

func (s *userStore) Create(ctx context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.users {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	u.ID = newID(u.ID)
	s.db.users = append(s.db.users, *u)
	return nil
}

func (s *userStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, u := range s.db.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, u := range s.db.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *userStore) Replace(ctx context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for i := range s.db.users {
		if s.db.users[i].ID == u.ID {
			s.db.users[i] = *u
			return nil
		}
	}
	return store.ErrNotFound
}

type contactStore struct{ db *DB }

func (s *contactStore) Create(ctx context.Context, c *models.Contact) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c.ID = newID(c.ID)
	s.db.contacts = append(s.db.contacts, *c)
	return nil
}

func (s *contactStore) FindAll(ctx context.Context) ([]models.Contact, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := append([]models.Contact{}, s.db.contacts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type blogStore struct{ db *DB }

func (s *blogStore) Create(ctx context.Context, b *models.Blog) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.blogs {
		if existing.Slug == b.Slug {
			return store.ErrDuplicate
		}
	}
	b.ID = newID(b.ID)
	s.db.blogs = append(s.db.blogs, *b)
	return nil
}

func (s *blogStore) FindAll(ctx context.Context) ([]models.Blog, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := append([]models.Blog{}, s.db.blogs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *blogStore) FindBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, b := range s.db.blogs {
		if b.Slug == slug {
			b := b
			return &b, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *blogStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, b := range s.db.blogs {
		if b.ID == id {
			b := b
			return &b, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *blogStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for i, b := range s.db.blogs {
		if b.ID == id {
			s.db.blogs = append(s.db.blogs[:i], s.db.blogs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type favoriteStore struct{ db *DB }

func (s *favoriteStore) Add(ctx context.Context, f *models.Favorite) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.favorites {
		if existing.UserID == f.UserID && existing.PropertyID == f.PropertyID {
			return store.ErrDuplicate
		}
	}
	f.ID = newID(f.ID)
	s.db.favorites = append(s.db.favorites, *f)
	return nil
}

func (s *favoriteStore) Properties(ctx context.Context, userID primitive.ObjectID) ([]models.Property, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := []models.Property{}
	for i := len(s.db.favorites) - 1; i >= 0; i-- {
		f := s.db.favorites[i]
		if f.UserID != userID {
			continue
		}
		for _, p := range s.db.properties {
			if p.ID == f.PropertyID {
				out = append(out, cloneProperty(p))
				break
			}
		}
	}
	return out, nil
}

func (s *favoriteStore) Remove(ctx context.Context, userID, propertyID primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for i, f := range s.db.favorites {
		if f.UserID == userID && f.PropertyID == propertyID {
			s.db.favorites = append(s.db.favorites[:i], s.db.favorites[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type recommendationStore struct{ db *DB }

func (s *recommendationStore) Create(ctx context.Context, rec *models.Recommendation) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec.ID = newID(rec.ID)
	s.db.recommendations = append(s.db.recommendations, *rec)
	return nil
}

func (s *recommendationStore) ForUser(ctx context.Context, userID primitive.ObjectID) ([]models.RecommendedProperty, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := []models.RecommendedProperty{}
	for i := len(s.db.recommendations) - 1; i >= 0; i-- {
		rec := s.db.recommendations[i]
		if rec.ToUserID != userID {
			continue
		}
		for _, p := range s.db.properties {
			if p.ID == rec.PropertyID {
				out = append(out, models.RecommendedProperty{Property: cloneProperty(p), RecommendedBy: rec.FromUserID})
				break
			}
		}
	}
	return out, nil
}
