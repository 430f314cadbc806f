// internal/app/store/jobs/store.go
package jobstore

import (
	"context"
	"errors"
	"time"

	"github.com/escos-india/sthapati/internal/app/system/paging"
	"github.com/escos-india/sthapati/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when the job does not exist.
	ErrNotFound = errors.New("job not found")
	// ErrClosed is returned when applying to a closed job.
	ErrClosed = errors.New("job is closed")
	// ErrAlreadyApplied is returned on a duplicate application.
	ErrAlreadyApplied = errors.New("already applied to this job")
	// ErrNotOwner is returned when a user edits a job they didn't post.
	ErrNotOwner = errors.New("job belongs to another user")
)

// Store manages jobs and their applications.
type Store struct {
	jobs *mongo.Collection
	apps *mongo.Collection
}

// New creates a Store over the jobs and job_applications collections.
func New(db *mongo.Database) *Store {
	return &Store{
		jobs: db.Collection("jobs"),
		apps: db.Collection("job_applications"),
	}
}

// CreateInput holds the fields accepted when posting a job.
type CreateInput struct {
	PostedBy    primitive.ObjectID
	Title       string
	Description string
	Category    string
	Location    models.Location
	WorkType    string
	SalaryRange string
}

// Create inserts a new open job posting.
func (s *Store) Create(ctx context.Context, in CreateInput) (models.Job, error) {
	now := time.Now()
	j := models.Job{
		ID:          primitive.NewObjectID(),
		PostedBy:    in.PostedBy,
		Title:       in.Title,
		TitleCI:     text.Fold(in.Title),
		Description: in.Description,
		Category:    in.Category,
		Location:    in.Location,
		WorkType:    in.WorkType,
		SalaryRange: in.SalaryRange,
		Status:      models.JobOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.jobs.InsertOne(ctx, j); err != nil {
		return models.Job{}, err
	}
	return j, nil
}

// GetByID loads a job.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	var j models.Job
	if err := s.jobs.FindOne(ctx, bson.M{"_id": id}).Decode(&j); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

// Close marks a job closed. Only the poster may close it; closing an
// already-closed job succeeds without writing.
func (s *Store) Close(ctx context.Context, id, userID primitive.ObjectID) error {
	j, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if j.PostedBy != userID {
		return ErrNotOwner
	}
	if j.Status == models.JobClosed {
		return nil
	}
	_, err = s.jobs.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     models.JobClosed,
		"updated_at": time.Now(),
	}})
	return err
}

// ListFilter narrows the public job board.
type ListFilter struct {
	Category string
	WorkType string
}

// Page is one page of the job board with its cursors.
type Page struct {
	Jobs       []models.Job
	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
}

// List returns open jobs, newest first, paged by keyset cursor on the
// creation timestamp.
func (s *Store) List(ctx context.Context, f ListFilter, before, after string) (Page, error) {
	filter := bson.M{"status": models.JobOpen}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.WorkType != "" {
		filter["work_type"] = f.WorkType
	}

	cfg := paging.ConfigureKeyset(before, after, -1)
	if window := cfg.IDWindow(); window != nil {
		filter = bson.M{"$and": bson.A{filter, window}}
	}

	findOpts := options.Find()
	cfg.ApplyToFindID(findOpts)

	cur, err := s.jobs.Find(ctx, filter, findOpts)
	if err != nil {
		return Page{}, err
	}
	defer cur.Close(ctx)

	var jobs []models.Job
	if err := cur.All(ctx, &jobs); err != nil {
		return Page{}, err
	}

	if cfg.Direction == paging.Backward {
		paging.Reverse(jobs)
	}

	res := paging.TrimPage(&jobs, before, after)
	prev, next := paging.BuildCursors(jobs,
		func(j models.Job) string { return "" },
		func(j models.Job) primitive.ObjectID { return j.ID },
	)

	return Page{
		Jobs:       jobs,
		HasPrev:    res.HasPrev,
		HasNext:    res.HasNext,
		PrevCursor: prev,
		NextCursor: next,
	}, nil
}

// ListByPoster returns all jobs posted by one user, newest first.
func (s *Store) ListByPoster(ctx context.Context, userID primitive.ObjectID) ([]models.Job, error) {
	cur, err := s.jobs.Find(ctx, bson.M{"posted_by": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var jobs []models.Job
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Apply records an application to an open job. The returned application
// carries a UUID key the applicant keeps as a receipt. One application per
// user per job, enforced by a unique index.
func (s *Store) Apply(ctx context.Context, jobID, applicantID primitive.ObjectID, coverNote, resumeURL string) (models.JobApplication, error) {
	j, err := s.GetByID(ctx, jobID)
	if err != nil {
		return models.JobApplication{}, err
	}
	if j.Status != models.JobOpen {
		return models.JobApplication{}, ErrClosed
	}

	app := models.JobApplication{
		ID:             primitive.NewObjectID(),
		JobID:          jobID,
		ApplicantID:    applicantID,
		ApplicationKey: uuid.NewString(),
		CoverNote:      coverNote,
		ResumeURL:      resumeURL,
		CreatedAt:      time.Now(),
	}
	if _, err := s.apps.InsertOne(ctx, app); err != nil {
		if wafflemongo.IsDup(err) {
			return models.JobApplication{}, ErrAlreadyApplied
		}
		return models.JobApplication{}, err
	}
	return app, nil
}

// Applications lists applications for a job, newest first. Only the poster
// should see these; the handler enforces that.
func (s *Store) Applications(ctx context.Context, jobID primitive.ObjectID) ([]models.JobApplication, error) {
	cur, err := s.apps.Find(ctx, bson.M{"job_id": jobID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var apps []models.JobApplication
	if err := cur.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// DeleteByUser removes a user's jobs and applications. Called from the
// admin hard-delete path.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := s.jobs.DeleteMany(ctx, bson.M{"posted_by": userID}); err != nil {
		return err
	}
	_, err := s.apps.DeleteMany(ctx, bson.M{"applicant_id": userID})
	return err
}
