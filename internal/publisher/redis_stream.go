package publisher

import (
	"context"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/fortuna/hoops/internal/models"
)

// DefaultPrefix namespaces every stream this package writes.
const DefaultPrefix = "bref"

// StreamPublisher writes mapped records to Redis streams, one stream entry
// per record.
type StreamPublisher struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// Connect opens a client for redisURL and checks it with a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}

// NewStreamPublisher creates a publisher on an existing client.
func NewStreamPublisher(client *redis.Client, prefix string) *StreamPublisher {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &StreamPublisher{client: client, prefix: prefix, now: time.Now}
}

// ScheduleStream is the stream holding a season's schedule entries.
func (p *StreamPublisher) ScheduleStream(season int) string {
	return p.prefix + ".schedule." + strconv.Itoa(season)
}

// GamesStream holds one summary per published game.
func (p *StreamPublisher) GamesStream() string { return p.prefix + ".games" }

// BoxscoreStream holds player lines for every published game.
func (p *StreamPublisher) BoxscoreStream() string { return p.prefix + ".boxscores" }

// RosterStream holds roster entries for a season.
func (p *StreamPublisher) RosterStream(season int) string {
	return p.prefix + ".rosters." + strconv.Itoa(season)
}

// InjuryStream holds injury reports for a season.
func (p *StreamPublisher) InjuryStream(season int) string {
	return p.prefix + ".injuries." + strconv.Itoa(season)
}

// PublishSchedule appends every entry to the season's schedule stream.
func (p *StreamPublisher) PublishSchedule(ctx context.Context, season int, entries []models.ScheduleEntry) error {
	records := make([]record, len(entries))
	for i, e := range entries {
		records[i] = record{key: e.GameLink, value: e}
	}
	return p.publish(ctx, p.ScheduleStream(season), "schedule", records)
}

// PublishBoxscore appends the game summary and every player line of a game.
func (p *StreamPublisher) PublishBoxscore(ctx context.Context, summary models.GameSummary, entries []models.BoxscoreEntry) error {
	if err := p.publish(ctx, p.GamesStream(), "game", []record{{key: summary.GameLink, value: summary}}); err != nil {
		return err
	}
	records := make([]record, len(entries))
	for i, e := range entries {
		records[i] = record{key: e.GameLink + "#" + e.Team.Code + "#" + e.PlayerID, value: e}
	}
	return p.publish(ctx, p.BoxscoreStream(), "boxscore", records)
}

// PublishRoster appends a team's players to the season's roster stream.
func (p *StreamPublisher) PublishRoster(ctx context.Context, season int, players []models.Player) error {
	records := make([]record, len(players))
	for i, pl := range players {
		records[i] = record{key: pl.Team.Code + "#" + pl.ID, value: pl}
	}
	return p.publish(ctx, p.RosterStream(season), "player", records)
}

// PublishInjuries appends injury reports to the season's injury stream.
func (p *StreamPublisher) PublishInjuries(ctx context.Context, season int, reports []models.InjuryReport) error {
	records := make([]record, len(reports))
	for i, r := range reports {
		records[i] = record{key: r.Team.Code + "#" + r.PlayerID, value: r}
	}
	return p.publish(ctx, p.InjuryStream(season), "injury", records)
}

type record struct {
	key   string
	value any
}

func (p *StreamPublisher) publish(ctx context.Context, stream, kind string, records []record) error {
	if len(records) == 0 {
		return nil
	}

	ts := p.now().Unix()
	payloads := make([]string, len(records))
	for i, r := range records {
		data, err := json.Marshal(r.value)
		if err != nil {
			return errors.Wrapf(err, "encode %s %s", kind, r.key)
		}
		payloads[i] = string(data)
	}

	_, err := p.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, r := range records {
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: stream,
				Values: map[string]interface{}{
					"kind":      kind,
					"key":       r.key,
					"data":      payloads[i],
					"timestamp": ts,
				},
			})
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "publish %d %s records to %s", len(records), kind, stream)
	}
	return nil
}

// Close closes the underlying client.
func (p *StreamPublisher) Close() error {
	return p.client.Close()
}
