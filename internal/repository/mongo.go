package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/config"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection       = "users"
	teamMembersCollection = "team_members"
	shiftTypesCollection  = "shift_types"
	shiftsCollection      = "shifts"
	countersCollection    = "counters"
)

// MongoStore 是基于 MongoDB 的 Store 实现。
// 为了和其他实现保持一致的整数 ID，使用 counters 集合生成自增序列。
type MongoStore struct {
	cfg *config.Config
	db  *mongo.Database
}

func NewMongoStore(cfg *config.Config, client *mongo.Client) *MongoStore {
	return &MongoStore{
		cfg: cfg,
		db:  client.Database(cfg.Mongo.Database),
	}
}

// EnsureIndexes 创建唯一索引和查询索引，可重复执行
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	indexes := map[string]mongo.IndexModel{
		usersCollection: {
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		teamMembersCollection: {
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		shiftsCollection: {
			Keys: bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}},
		},
	}

	for coll, model := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", coll, err)
		}
	}

	return nil
}

func (s *MongoStore) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(s.cfg.Mongo.QueryTimeout)*time.Second)
}

// 每个集合只有一个唯一索引，因此可以按集合确定冲突字段
var mongoUniqueFields = map[string]string{
	usersCollection:       "username",
	teamMembersCollection: "email",
}

func translateMongoError(coll string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrRecordNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		if field, ok := mongoUniqueFields[coll]; ok {
			return &DuplicateError{Field: field}
		}
	}

	return err
}

func (s *MongoStore) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}}

	err := s.db.Collection(countersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": name}, update, opts).
		Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate %s id: %w", name, err)
	}

	return counter.Seq, nil
}

func findAll[D any, T any](ctx context.Context, coll *mongo.Collection, filter any, sort bson.D, conv func(*D) *T) ([]*T, error) {
	cur, err := coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*T, 0)
	for cur.Next(ctx) {
		var doc D
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, conv(&doc))
	}

	if err := cur.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func findByID[D any, T any](ctx context.Context, coll *mongo.Collection, id int64, conv func(*D) *T) (*T, error) {
	var doc D
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translateMongoError(coll.Name(), err)
	}
	return conv(&doc), nil
}

func (s *MongoStore) deleteByID(ctx context.Context, coll string, id int64) (bool, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	res, err := s.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}

	return res.DeletedCount > 0, nil
}

func (s *MongoStore) replace(ctx context.Context, coll string, id int64, doc any) error {
	res, err := s.db.Collection(coll).ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return translateMongoError(coll, err)
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

var byID = bson.D{{Key: "_id", Value: 1}}

/*** users ***/

type userDoc struct {
	ID       int64  `bson:"_id"`
	Username string `bson:"username"`
	Password string `bson:"password"`
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{ID: d.ID, Username: d.Username, Password: d.Password}
}

func newUserDoc(u *domain.User) *userDoc {
	return &userDoc{ID: u.ID, Username: u.Username, Password: u.Password}
}

func (s *MongoStore) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	return findAll(ctx, s.db.Collection(usersCollection), bson.D{}, byID, (*userDoc).toDomain)
}

func (s *MongoStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	return findByID(ctx, s.db.Collection(usersCollection), id, (*userDoc).toDomain)
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	var doc userDoc
	if err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		return nil, translateMongoError(usersCollection, err)
	}

	return doc.toDomain(), nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	id, err := s.nextID(ctx, usersCollection)
	if err != nil {
		return err
	}

	doc := newUserDoc(user)
	doc.ID = id
	if _, err := s.db.Collection(usersCollection).InsertOne(ctx, doc); err != nil {
		return translateMongoError(usersCollection, err)
	}

	user.ID = id
	return nil
}

func (s *MongoStore) UpdateUser(ctx context.Context, id int64, patch *domain.UserPatch) (*domain.User, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	user, err := findByID(ctx, s.db.Collection(usersCollection), id, (*userDoc).toDomain)
	if err != nil {
		return nil, err
	}

	patch.Apply(user)
	if err := s.replace(ctx, usersCollection, id, newUserDoc(user)); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *MongoStore) DeleteUser(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, usersCollection, id)
}

/*** team members ***/

type teamMemberDoc struct {
	ID        int64   `bson:"_id"`
	Name      string  `bson:"name"`
	Position  string  `bson:"position"`
	Email     string  `bson:"email"`
	Phone     *string `bson:"phone"`
	AvatarURL *string `bson:"avatar_url"`
	Status    string  `bson:"status"`
	UserID    *int64  `bson:"user_id"`
}

func (d *teamMemberDoc) toDomain() *domain.TeamMember {
	return &domain.TeamMember{
		ID:        d.ID,
		Name:      d.Name,
		Position:  d.Position,
		Email:     d.Email,
		Phone:     d.Phone,
		AvatarURL: d.AvatarURL,
		Status:    domain.TeamMemberStatus(d.Status),
		UserID:    d.UserID,
	}
}

func newTeamMemberDoc(m *domain.TeamMember) *teamMemberDoc {
	return &teamMemberDoc{
		ID:        m.ID,
		Name:      m.Name,
		Position:  m.Position,
		Email:     m.Email,
		Phone:     m.Phone,
		AvatarURL: m.AvatarURL,
		Status:    string(m.Status),
		UserID:    m.UserID,
	}
}

func (s *MongoStore) GetAllTeamMembers(ctx context.Context) ([]*domain.TeamMember, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	return findAll(ctx, s.db.Collection(teamMembersCollection), bson.D{}, byID, (*teamMemberDoc).toDomain)
}

func (s *MongoStore) GetTeamMemberByID(ctx context.Context, id int64) (*domain.TeamMember, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	return findByID(ctx, s.db.Collection(teamMembersCollection), id, (*teamMemberDoc).toDomain)
}

func (s *MongoStore) CreateTeamMember(ctx context.Context, member *domain.TeamMember) error {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	if member.Status == "" {
		member.Status = domain.StatusActive
	}

	id, err := s.nextID(ctx, teamMembersCollection)
	if err != nil {
		return err
	}

	doc := newTeamMemberDoc(member)
	doc.ID = id
	if _, err := s.db.Collection(teamMembersCollection).InsertOne(ctx, doc); err != nil {
		return translateMongoError(teamMembersCollection, err)
	}

	member.ID = id
	return nil
}

func (s *MongoStore) UpdateTeamMember(ctx context.Context, id int64, patch *domain.TeamMemberPatch) (*domain.TeamMember, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	member, err := findByID(ctx, s.db.Collection(teamMembersCollection), id, (*teamMemberDoc).toDomain)
	if err != nil {
		return nil, err
	}

	patch.Apply(member)
	if err := s.replace(ctx, teamMembersCollection, id, newTeamMemberDoc(member)); err != nil {
		return nil, err
	}

	return member, nil
}

func (s *MongoStore) DeleteTeamMember(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, teamMembersCollection, id)
}

/*** shift types ***/

type shiftTypeDoc struct {
	ID          int64   `bson:"_id"`
	Name        string  `bson:"name"`
	StartTime   string  `bson:"start_time"`
	EndTime     string  `bson:"end_time"`
	Color       string  `bson:"color"`
	Description *string `bson:"description"`
}

func (d *shiftTypeDoc) toDomain() *domain.ShiftType {
	return &domain.ShiftType{
		ID:          d.ID,
		Name:        d.Name,
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		Color:       d.Color,
		Description: d.Description,
	}
}

func newShiftTypeDoc(st *domain.ShiftType) *shiftTypeDoc {
	return &shiftTypeDoc{
		ID:          st.ID,
		Name:        st.Name,
		StartTime:   st.StartTime,
		EndTime:     st.EndTime,
		Color:       st.Color,
		Description: st.Description,
	}
}

func (s *MongoStore) GetAllShiftTypes(ctx context.Context) ([]*domain.ShiftType, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	return findAll(ctx, s.db.Collection(shiftTypesCollection), bson.D{}, byID, (*shiftTypeDoc).toDomain)
}

func (s *MongoStore) GetShiftTypeByID(ctx context.Context, id int64) (*domain.ShiftType, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	return findByID(ctx, s.db.Collection(shiftTypesCollection), id, (*shiftTypeDoc).toDomain)
}

func (s *MongoStore) CreateShiftType(ctx context.Context, st *domain.ShiftType) error {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	if st.Color == "" {
		st.Color = domain.DefaultShiftTypeColor
	}

	id, err := s.nextID(ctx, shiftTypesCollection)
	if err != nil {
		return err
	}

	doc := newShiftTypeDoc(st)
	doc.ID = id
	if _, err := s.db.Collection(shiftTypesCollection).InsertOne(ctx, doc); err != nil {
		return translateMongoError(shiftTypesCollection, err)
	}

	st.ID = id
	return nil
}

func (s *MongoStore) UpdateShiftType(ctx context.Context, id int64, patch *domain.ShiftTypePatch) (*domain.ShiftType, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	st, err := findByID(ctx, s.db.Collection(shiftTypesCollection), id, (*shiftTypeDoc).toDomain)
	if err != nil {
		return nil, err
	}

	patch.Apply(st)
	if err := s.replace(ctx, shiftTypesCollection, id, newShiftTypeDoc(st)); err != nil {
		return nil, err
	}

	return st, nil
}

func (s *MongoStore) DeleteShiftType(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, shiftTypesCollection, id)
}

/*** shifts ***/

// date 以 YYYY-MM-DD 字符串保存，字典序即日期顺序，可以直接做范围查询
type shiftDoc struct {
	ID            int64     `bson:"_id"`
	Date          string    `bson:"date"`
	TeamMemberID  *int64    `bson:"team_member_id"`
	ShiftTypeID   int64     `bson:"shift_type_id"`
	Notes         *string   `bson:"notes"`
	NeedsCoverage bool      `bson:"needs_coverage"`
	CreatedAt     time.Time `bson:"created_at"`
}

func (d *shiftDoc) toDomain() *domain.Shift {
	// 写入时已经校验过格式，这里解析失败只会得到零值日期
	date, _ := domain.ParseDate(d.Date)
	return &domain.Shift{
		ID:            d.ID,
		Date:          date,
		TeamMemberID:  d.TeamMemberID,
		ShiftTypeID:   d.ShiftTypeID,
		Notes:         d.Notes,
		NeedsCoverage: d.NeedsCoverage,
		CreatedAt:     d.CreatedAt.UTC(),
	}
}

func newShiftDoc(sh *domain.Shift) *shiftDoc {
	return &shiftDoc{
		ID:            sh.ID,
		Date:          sh.Date.String(),
		TeamMemberID:  sh.TeamMemberID,
		ShiftTypeID:   sh.ShiftTypeID,
		Notes:         sh.Notes,
		NeedsCoverage: sh.NeedsCoverage,
		CreatedAt:     sh.CreatedAt,
	}
}

func (s *MongoStore) GetAllShifts(ctx context.Context) ([]*domain.Shift, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	return findAll(ctx, s.db.Collection(shiftsCollection), bson.D{}, byID, (*shiftDoc).toDomain)
}

func (s *MongoStore) GetShiftsBetween(ctx context.Context, from, to domain.Date) ([]*domain.Shift, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	filter := bson.D{{Key: "date", Value: bson.D{
		{Key: "$gte", Value: from.String()},
		{Key: "$lte", Value: to.String()},
	}}}
	sort := bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}

	return findAll(ctx, s.db.Collection(shiftsCollection), filter, sort, (*shiftDoc).toDomain)
}

func (s *MongoStore) GetShiftByID(ctx context.Context, id int64) (*domain.Shift, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	return findByID(ctx, s.db.Collection(shiftsCollection), id, (*shiftDoc).toDomain)
}

func (s *MongoStore) CreateShift(ctx context.Context, shift *domain.Shift) error {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	id, err := s.nextID(ctx, shiftsCollection)
	if err != nil {
		return err
	}

	// MongoDB 的时间精度为毫秒
	createdAt := time.Now().UTC().Truncate(time.Millisecond)

	doc := newShiftDoc(shift)
	doc.ID = id
	doc.CreatedAt = createdAt
	if _, err := s.db.Collection(shiftsCollection).InsertOne(ctx, doc); err != nil {
		return translateMongoError(shiftsCollection, err)
	}

	shift.ID = id
	shift.CreatedAt = createdAt
	return nil
}

func (s *MongoStore) UpdateShift(ctx context.Context, id int64, patch *domain.ShiftPatch) (*domain.Shift, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	shift, err := findByID(ctx, s.db.Collection(shiftsCollection), id, (*shiftDoc).toDomain)
	if err != nil {
		return nil, err
	}

	patch.Apply(shift)
	if err := s.replace(ctx, shiftsCollection, id, newShiftDoc(shift)); err != nil {
		return nil, err
	}

	return shift, nil
}

func (s *MongoStore) DeleteShift(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, shiftsCollection, id)
}
