package document

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListFilter narrows a catalog listing.
type ListFilter struct {
	Tag    string
	Search string
	Page   int
	Limit  int
}

func (f ListFilter) query() bson.M {
	q := bson.M{}
	if f.Tag != "" {
		q["tags"] = f.Tag
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"tags": re},
			bson.M{"description": re},
		}
	}
	return q
}

func (f ListFilter) skip() int64 {
	return int64((f.Page - 1) * f.Limit)
}

// --- Movies ---

// MovieByID fetches one movie.
func (s *Store) MovieByID(ctx context.Context, id primitive.ObjectID) (*Movie, error) {
	return findOne[Movie](ctx, s.movies, bson.M{"_id": id})
}

// MovieExists checks existence without materializing the document.
func (s *Store) MovieExists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.movies.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return n > 0, err
}

// ListMovies returns one page of movies plus the total match count.
func (s *Store) ListMovies(ctx context.Context, f ListFilter) ([]Movie, int64, error) {
	q := f.query()

	cur, err := s.movies.Find(ctx, q, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(f.skip()).
		SetLimit(int64(f.Limit)))
	if err != nil {
		return nil, 0, err
	}
	movies, err := decodeAll[Movie](ctx, cur)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.movies.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

// FeaturedMovies returns the curated featured set.
func (s *Store) FeaturedMovies(ctx context.Context, limit int) ([]Movie, error) {
	cur, err := s.movies.Find(ctx, bson.M{"featured": true}, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	return decodeAll[Movie](ctx, cur)
}

// RelatedMovieCandidates returns the scoring candidate pool for a movie
// detail view: every other movie, in the store's natural order.
func (s *Store) RelatedMovieCandidates(ctx context.Context, exclude primitive.ObjectID) ([]Movie, error) {
	cur, err := s.movies.Find(ctx, bson.M{"_id": bson.M{"$ne": exclude}}, options.Find().
		SetProjection(bson.M{"title": 1, "image": 1, "releaseYear": 1, "tags": 1, "rating": 1}))
	if err != nil {
		return nil, err
	}
	return decodeAll[Movie](ctx, cur)
}

// CreateMovie inserts a movie and returns its id.
func (s *Store) CreateMovie(ctx context.Context, m *Movie) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	res, err := s.movies.InsertOne(ctx, m)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// UpdateMovie applies a partial update.
func (s *Store) UpdateMovie(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	res, err := s.movies.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMovie removes a movie.
func (s *Store) DeleteMovie(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.movies.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Shows ---

// ShowByID fetches one show.
func (s *Store) ShowByID(ctx context.Context, id primitive.ObjectID) (*Show, error) {
	return findOne[Show](ctx, s.shows, bson.M{"_id": id})
}

// ShowExists checks existence without materializing the document.
func (s *Store) ShowExists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.shows.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return n > 0, err
}

// ListShows returns one page of shows plus the total match count.
func (s *Store) ListShows(ctx context.Context, f ListFilter) ([]Show, int64, error) {
	q := f.query()

	cur, err := s.shows.Find(ctx, q, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(f.skip()).
		SetLimit(int64(f.Limit)))
	if err != nil {
		return nil, 0, err
	}
	shows, err := decodeAll[Show](ctx, cur)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.shows.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return shows, total, nil
}

// FeaturedShows returns the curated featured set.
func (s *Store) FeaturedShows(ctx context.Context, limit int) ([]Show, error) {
	cur, err := s.shows.Find(ctx, bson.M{"featured": true}, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	return decodeAll[Show](ctx, cur)
}

// RelatedShowCandidates returns the scoring candidate pool for a show
// detail view.
func (s *Store) RelatedShowCandidates(ctx context.Context, exclude primitive.ObjectID) ([]Show, error) {
	cur, err := s.shows.Find(ctx, bson.M{"_id": bson.M{"$ne": exclude}}, options.Find().
		SetProjection(bson.M{"title": 1, "image": 1, "startYear": 1, "tags": 1, "rating": 1}))
	if err != nil {
		return nil, err
	}
	return decodeAll[Show](ctx, cur)
}

// CreateShow inserts a show and returns its id.
func (s *Store) CreateShow(ctx context.Context, sh *Show) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	sh.CreatedAt, sh.UpdatedAt = now, now
	res, err := s.shows.InsertOne(ctx, sh)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// UpdateShow applies a partial update.
func (s *Store) UpdateShow(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	res, err := s.shows.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteShow removes a show together with its seasons and episodes.
func (s *Store) DeleteShow(ctx context.Context, id primitive.ObjectID) error {
	seasons, err := s.SeasonsByShow(ctx, id)
	if err != nil {
		return err
	}

	seasonIDs := make([]primitive.ObjectID, 0, len(seasons))
	for _, season := range seasons {
		seasonIDs = append(seasonIDs, season.ID)
	}
	if len(seasonIDs) > 0 {
		if _, err := s.episodes.DeleteMany(ctx, bson.M{"seasonId": bson.M{"$in": seasonIDs}}); err != nil {
			return err
		}
		if _, err := s.seasons.DeleteMany(ctx, bson.M{"showId": id}); err != nil {
			return err
		}
	}

	res, err := s.shows.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Seasons ---

// SeasonsByShow returns a show's seasons ordered by season number.
func (s *Store) SeasonsByShow(ctx context.Context, showID primitive.ObjectID) ([]Season, error) {
	cur, err := s.seasons.Find(ctx, bson.M{"showId": showID}, options.Find().
		SetSort(bson.D{{Key: "seasonNumber", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[Season](ctx, cur)
}

// SeasonOfShow fetches a season, verifying it belongs to the show.
func (s *Store) SeasonOfShow(ctx context.Context, seasonID, showID primitive.ObjectID) (*Season, error) {
	return findOne[Season](ctx, s.seasons, bson.M{"_id": seasonID, "showId": showID})
}

// SeasonByID fetches one season.
func (s *Store) SeasonByID(ctx context.Context, id primitive.ObjectID) (*Season, error) {
	return findOne[Season](ctx, s.seasons, bson.M{"_id": id})
}

// CreateSeason inserts a season.
func (s *Store) CreateSeason(ctx context.Context, season *Season) (primitive.ObjectID, error) {
	season.CreatedAt = time.Now().UTC()
	res, err := s.seasons.InsertOne(ctx, season)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// UpdateSeason applies a partial update.
func (s *Store) UpdateSeason(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	res, err := s.seasons.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSeason removes a season and its episodes.
func (s *Store) DeleteSeason(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.episodes.DeleteMany(ctx, bson.M{"seasonId": id}); err != nil {
		return err
	}
	res, err := s.seasons.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Episodes ---

// EpisodeByID fetches one episode.
func (s *Store) EpisodeByID(ctx context.Context, id primitive.ObjectID) (*Episode, error) {
	return findOne[Episode](ctx, s.episodes, bson.M{"_id": id})
}

// EpisodesBySeason returns one page of a season's episodes plus the total
// count. A zero limit returns the full season.
func (s *Store) EpisodesBySeason(ctx context.Context, seasonID primitive.ObjectID, page, limit int) ([]Episode, int64, error) {
	opts := options.Find().SetSort(bson.D{{Key: "episodeNumber", Value: 1}})
	if limit > 0 {
		opts = opts.SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
	}

	cur, err := s.episodes.Find(ctx, bson.M{"seasonId": seasonID}, opts)
	if err != nil {
		return nil, 0, err
	}
	episodes, err := decodeAll[Episode](ctx, cur)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.episodes.CountDocuments(ctx, bson.M{"seasonId": seasonID})
	if err != nil {
		return nil, 0, err
	}
	return episodes, total, nil
}

// CreateEpisodes inserts episodes and links them to their season.
func (s *Store) CreateEpisodes(ctx context.Context, seasonID primitive.ObjectID, episodes []Episode) ([]primitive.ObjectID, error) {
	now := time.Now().UTC()
	docs := make([]any, len(episodes))
	for i := range episodes {
		episodes[i].SeasonID = seasonID
		episodes[i].CreatedAt = now
		docs[i] = episodes[i]
	}

	res, err := s.episodes.InsertMany(ctx, docs)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(res.InsertedIDs))
	for i, raw := range res.InsertedIDs {
		ids[i] = raw.(primitive.ObjectID)
	}

	if _, err := s.seasons.UpdateOne(ctx,
		bson.M{"_id": seasonID},
		bson.M{"$push": bson.M{"episodes": bson.M{"$each": ids}}},
	); err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateEpisode applies a partial update.
func (s *Store) UpdateEpisode(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	res, err := s.episodes.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEpisode removes an episode and unlinks it from its season.
func (s *Store) DeleteEpisode(ctx context.Context, id primitive.ObjectID) error {
	episode, err := s.EpisodeByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.seasons.UpdateOne(ctx,
		bson.M{"_id": episode.SeasonID},
		bson.M{"$pull": bson.M{"episodes": id}},
	); err != nil {
		return err
	}

	_, err = s.episodes.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// RecentMovies returns the newest movies by creation time.
func (s *Store) RecentMovies(ctx context.Context, limit int) ([]Movie, error) {
	cur, err := s.movies.Find(ctx, bson.M{}, options.Find().
		SetProjection(bson.M{"title": 1, "image": 1, "createdAt": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	return decodeAll[Movie](ctx, cur)
}

// RecentEpisodes returns the newest episodes by creation time.
func (s *Store) RecentEpisodes(ctx context.Context, limit int) ([]Episode, error) {
	cur, err := s.episodes.Find(ctx, bson.M{}, options.Find().
		SetProjection(bson.M{"title": 1, "image": 1, "createdAt": 1, "seasonId": 1, "episodeNumber": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	return decodeAll[Episode](ctx, cur)
}
