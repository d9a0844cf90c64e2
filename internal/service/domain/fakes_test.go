package domain

import (
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/qs-lzh/yamdb/internal/model"
	"github.com/qs-lzh/yamdb/internal/repository"
)

type fakeTx struct{}

func (fakeTx) Transaction(fc func(tx *gorm.DB) error, _ ...*sql.TxOptions) error {
	return fc(nil)
}

/*
* users
 */

type fakeUserRepo struct {
	mu      sync.Mutex
	nextID  uint
	users   map[uint]*model.User
	lookups int
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

var _ repository.UserRepo = (*fakeUserRepo)(nil)

func (r *fakeUserRepo) WithTx(*gorm.DB) repository.UserRepo { return r }

func (r *fakeUserRepo) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) find(match func(*model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	for _, u := range r.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByID(id uint) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) GetByUsername(username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) GetByEmail(email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) List(search string) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		if strings.Contains(u.Username, search) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *fakeUserRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

/*
* collaborators
 */

type sentMail struct {
	recipient, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(recipient, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{recipient, subject, body})
	return nil
}

// fakeCodes derives a code from the user's id, email and last login so a
// state change retires it.
type fakeCodes struct{}

func (fakeCodes) Make(user *model.User) string {
	code := "code-" + user.Email
	if user.LastLogin != nil {
		code += "-" + user.LastLogin.Format(time.RFC3339Nano)
	}
	return code
}

func (c fakeCodes) Check(user *model.User, code string) bool {
	return code == c.Make(user)
}

type fakeMinter struct {
	err error
}

func (m fakeMinter) Mint(user *model.User) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "token-for-" + user.Username, nil
}

type fakeRatingCache struct {
	mu          sync.Mutex
	ratings     map[uint]*float64
	gens        map[uint]int64
	invalidated []uint
	err         error
}

func newFakeRatingCache() *fakeRatingCache {
	return &fakeRatingCache{ratings: make(map[uint]*float64), gens: make(map[uint]int64)}
}

func (c *fakeRatingCache) GetTitleRating(titleID uint) (*float64, bool, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, 0, c.err
	}
	r, ok := c.ratings[titleID]
	return r, ok, c.gens[titleID], nil
}

func (c *fakeRatingCache) SetTitleRating(titleID uint, rating *float64, gen int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.gens[titleID] != gen {
		return nil
	}
	c.ratings[titleID] = rating
	return nil
}

func (c *fakeRatingCache) InvalidateTitleRating(titleID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ratings, titleID)
	c.gens[titleID]++
	c.invalidated = append(c.invalidated, titleID)
	return c.err
}

/*
* catalogue
 */

type fakeCategoryRepo struct {
	nextID     uint
	categories map[string]*model.Category
}

func newFakeCategoryRepo(categories ...model.Category) *fakeCategoryRepo {
	r := &fakeCategoryRepo{categories: make(map[string]*model.Category)}
	for i := range categories {
		c := categories[i]
		r.categories[c.Slug] = &c
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
	}
	return r
}

var _ repository.CategoryRepo = (*fakeCategoryRepo)(nil)

func (r *fakeCategoryRepo) WithTx(*gorm.DB) repository.CategoryRepo { return r }

func (r *fakeCategoryRepo) Create(category *model.Category) error {
	if _, ok := r.categories[category.Slug]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.nextID++
	category.ID = r.nextID
	stored := *category
	r.categories[category.Slug] = &stored
	return nil
}

func (r *fakeCategoryRepo) GetBySlug(slug string) (*model.Category, error) {
	c, ok := r.categories[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCategoryRepo) List(string) ([]model.Category, error) {
	var out []model.Category
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) Delete(id uint) error {
	for slug, c := range r.categories {
		if c.ID == id {
			delete(r.categories, slug)
		}
	}
	return nil
}

type fakeGenreRepo struct {
	genres map[string]model.Genre
}

func newFakeGenreRepo(genres ...model.Genre) *fakeGenreRepo {
	r := &fakeGenreRepo{genres: make(map[string]model.Genre)}
	for _, g := range genres {
		r.genres[g.Slug] = g
	}
	return r
}

var _ repository.GenreRepo = (*fakeGenreRepo)(nil)

func (r *fakeGenreRepo) WithTx(*gorm.DB) repository.GenreRepo { return r }

func (r *fakeGenreRepo) Create(genre *model.Genre) error {
	if _, ok := r.genres[genre.Slug]; ok {
		return gorm.ErrDuplicatedKey
	}
	genre.ID = uint(len(r.genres) + 1)
	r.genres[genre.Slug] = *genre
	return nil
}

func (r *fakeGenreRepo) GetBySlug(slug string) (*model.Genre, error) {
	g, ok := r.genres[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &g, nil
}

func (r *fakeGenreRepo) GetBySlugs(slugs []string) ([]model.Genre, error) {
	var out []model.Genre
	for _, slug := range slugs {
		if g, ok := r.genres[slug]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeGenreRepo) List(string) ([]model.Genre, error) {
	var out []model.Genre
	for _, g := range r.genres {
		out = append(out, g)
	}
	return out, nil
}

func (r *fakeGenreRepo) Delete(id uint) error {
	for slug, g := range r.genres {
		if g.ID == id {
			delete(r.genres, slug)
		}
	}
	return nil
}

type fakeTitleRepo struct {
	mu      sync.Mutex
	nextID  uint
	titles  map[uint]*model.Title
	reviews *fakeReviewRepo
	loads   int

	// afterRatings runs once the means are computed, before they are returned
	afterRatings func()
}

func newFakeTitleRepo(reviews *fakeReviewRepo, titles ...model.Title) *fakeTitleRepo {
	r := &fakeTitleRepo{titles: make(map[uint]*model.Title), reviews: reviews}
	for i := range titles {
		t := titles[i]
		r.titles[t.ID] = &t
		if t.ID > r.nextID {
			r.nextID = t.ID
		}
	}
	return r
}

var _ repository.TitleRepo = (*fakeTitleRepo)(nil)

func (r *fakeTitleRepo) WithTx(*gorm.DB) repository.TitleRepo { return r }

func (r *fakeTitleRepo) Create(title *model.Title) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	title.ID = r.nextID
	stored := *title
	r.titles[title.ID] = &stored
	return nil
}

func (r *fakeTitleRepo) GetByID(id uint) (*model.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	t, ok := r.titles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTitleRepo) List(filter repository.TitleFilter) ([]model.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Title
	for _, t := range r.titles {
		if filter.Year != 0 && t.Year != filter.Year {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTitleRepo) Update(title *model.Title, genres []model.Genre) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if genres != nil {
		title.Genres = genres
	}
	stored := *title
	r.titles[title.ID] = &stored
	return nil
}

func (r *fakeTitleRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.titles, id)
	return nil
}

func (r *fakeTitleRepo) Ratings(ids []uint) (map[uint]float64, error) {
	sums := make(map[uint]int)
	counts := make(map[uint]int)
	for _, review := range r.reviews.all() {
		sums[review.TitleID] += review.Score
		counts[review.TitleID]++
	}
	out := make(map[uint]float64)
	for _, id := range ids {
		if counts[id] > 0 {
			out[id] = float64(sums[id]) / float64(counts[id])
		}
	}
	if r.afterRatings != nil {
		r.afterRatings()
	}
	return out, nil
}

type fakeReviewRepo struct {
	mu           sync.Mutex
	nextID       uint
	reviews      map[uint]*model.Review
	skipPrecheck bool
	loads        int
	updateErr    error
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[uint]*model.Review)}
}

var _ repository.ReviewRepo = (*fakeReviewRepo)(nil)

func (r *fakeReviewRepo) WithTx(*gorm.DB) repository.ReviewRepo { return r }

// Create enforces the (title_id, author_id) unique index.
func (r *fakeReviewRepo) Create(review *model.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.TitleID == review.TitleID && existing.AuthorID == review.AuthorID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	review.ID = r.nextID
	review.PubDate = time.Now()
	stored := *review
	r.reviews[review.ID] = &stored
	return nil
}

func (r *fakeReviewRepo) GetByID(titleID, id uint) (*model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	review, ok := r.reviews[id]
	if !ok || review.TitleID != titleID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *review
	return &copied, nil
}

func (r *fakeReviewRepo) ListByTitle(titleID uint) ([]model.Review, error) {
	var out []model.Review
	for _, review := range r.all() {
		if review.TitleID == titleID {
			out = append(out, review)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) ExistsByTitleAndAuthor(titleID, authorID uint) (bool, error) {
	if r.skipPrecheck {
		return false, nil
	}
	for _, review := range r.all() {
		if review.TitleID == titleID && review.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReviewRepo) TitleIDsByAuthor(authorID uint) ([]uint, error) {
	var ids []uint
	for _, review := range r.all() {
		if review.AuthorID == authorID {
			ids = append(ids, review.TitleID)
		}
	}
	return ids, nil
}

func (r *fakeReviewRepo) Update(review *model.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.reviews[review.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *review
	r.reviews[review.ID] = &stored
	return nil
}

func (r *fakeReviewRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reviews, id)
	return nil
}

func (r *fakeReviewRepo) all() []model.Review {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Review, 0, len(r.reviews))
	for _, review := range r.reviews {
		out = append(out, *review)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeCommentRepo struct {
	nextID    uint
	comments  map[uint]*model.Comment
	loads     int
	updateErr error
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[uint]*model.Comment)}
}

var _ repository.CommentRepo = (*fakeCommentRepo)(nil)

func (r *fakeCommentRepo) WithTx(*gorm.DB) repository.CommentRepo { return r }

func (r *fakeCommentRepo) Create(comment *model.Comment) error {
	r.nextID++
	comment.ID = r.nextID
	stored := *comment
	r.comments[comment.ID] = &stored
	return nil
}

func (r *fakeCommentRepo) GetByID(reviewID, id uint) (*model.Comment, error) {
	r.loads++
	comment, ok := r.comments[id]
	if !ok || comment.ReviewID != reviewID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *comment
	return &copied, nil
}

func (r *fakeCommentRepo) ListByReview(reviewID uint) ([]model.Comment, error) {
	var out []model.Comment
	for _, c := range r.comments {
		if c.ReviewID == reviewID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) Update(comment *model.Comment) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	stored := *comment
	r.comments[comment.ID] = &stored
	return nil
}

func (r *fakeCommentRepo) Delete(id uint) error {
	delete(r.comments, id)
	return nil
}

var errBoom = errors.New("boom")

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
