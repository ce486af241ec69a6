package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"formcraft/internal/domain"
)

const (
	mongoIDField        = "_id"
	mongoCreatedAtField = "createdAt"
	mongoUpdatedAtField = "updatedAt"
)

// MongoStore implements domain.DocumentStore on MongoDB. Bodies are stored as
// BSON documents next to their _id and timestamps.
type MongoStore struct {
	db  *mongo.Database
	now func() time.Time
}

// NewMongoStore creates a store on db.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db, now: time.Now}
}

func (s *MongoStore) Insert(ctx context.Context, collection domain.Collection, body json.RawMessage) (*domain.Document, error) {
	fields, err := bodyToBSON(collection, body)
	if err != nil {
		return nil, err
	}
	oid := primitive.NewObjectID()
	now := s.now().UTC().Truncate(time.Millisecond)

	doc := make(bson.D, 0, len(fields)+3)
	doc = append(doc, bson.E{Key: mongoIDField, Value: oid})
	doc = append(doc, fields...)
	doc = append(doc,
		bson.E{Key: mongoCreatedAtField, Value: now},
		bson.E{Key: mongoUpdatedAtField, Value: now},
	)

	if _, err := s.db.Collection(string(collection)).InsertOne(ctx, doc); err != nil {
		return nil, mongoError("insert", collection, oid.Hex(), err)
	}
	return &domain.Document{ID: oid.Hex(), Body: body, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *MongoStore) FindByID(ctx context.Context, collection domain.Collection, id string) (*domain.Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound(collection, id)
	}

	var raw bson.D
	err = s.db.Collection(string(collection)).FindOne(ctx, bson.D{{Key: mongoIDField, Value: oid}}).Decode(&raw)
	if err != nil {
		return nil, mongoError("find", collection, id, err)
	}
	return bsonToDocument(id, raw)
}

func (s *MongoStore) Replace(ctx context.Context, collection domain.Collection, id string, body json.RawMessage) (*domain.Document, error) {
	current, err := s.FindByID(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	fields, err := bodyToBSON(collection, body)
	if err != nil {
		return nil, err
	}
	oid, _ := primitive.ObjectIDFromHex(id)
	now := s.now().UTC().Truncate(time.Millisecond)

	doc := make(bson.D, 0, len(fields)+2)
	doc = append(doc, fields...)
	doc = append(doc,
		bson.E{Key: mongoCreatedAtField, Value: current.CreatedAt},
		bson.E{Key: mongoUpdatedAtField, Value: now},
	)

	result, err := s.db.Collection(string(collection)).ReplaceOne(ctx, bson.D{{Key: mongoIDField, Value: oid}}, doc)
	if err != nil {
		return nil, mongoError("replace", collection, id, err)
	}
	if result.MatchedCount == 0 {
		return nil, notFound(collection, id)
	}
	return &domain.Document{ID: id, Body: body, CreatedAt: current.CreatedAt, UpdatedAt: now}, nil
}

// mongoNativeFields lists top-level body fields stored with a native BSON
// type instead of their JSON string, so responses reference their form by
// ObjectId and carry a real submission Date.
var mongoNativeFields = map[domain.Collection]map[string]bsontype.Type{
	domain.CollectionResponses: {
		"formId":      bson.TypeObjectID,
		"submittedAt": bson.TypeDateTime,
	},
}

// bodyToBSON converts a JSON object into BSON fields, dropping the keys the
// store owns. The body is read as plain JSON: keys such as "$date" stay
// ordinary field names.
func bodyToBSON(collection domain.Collection, body json.RawMessage) (bson.D, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	value, err := decodeJSONValue(dec)
	if err == nil {
		if _, terr := dec.Token(); !errors.Is(terr, io.EOF) {
			err = errors.New("trailing data after document")
		}
	}
	fields, ok := value.(bson.D)
	if err != nil || !ok {
		if err == nil {
			err = fmt.Errorf("got %T", value)
		}
		return nil, domain.NewInternalError("document body is not a JSON object", err)
	}

	native := mongoNativeFields[collection]
	out := fields[:0]
	for _, f := range fields {
		switch f.Key {
		case mongoIDField, mongoCreatedAtField, mongoUpdatedAtField:
			continue
		}
		f.Value = toNative(native[f.Key], f.Value)
		out = append(out, f)
	}
	return out, nil
}

// toNative converts a string to the wanted BSON type. Values that do not
// parse are stored unchanged.
func toNative(want bsontype.Type, v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch want {
	case bson.TypeObjectID:
		if oid, err := primitive.ObjectIDFromHex(s); err == nil {
			return oid
		}
	case bson.TypeDateTime:
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return primitive.NewDateTimeFromTime(t)
		}
	}
	return v
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		if t == '{' {
			doc := bson.D{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				value, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				doc = append(doc, bson.E{Key: keyTok.(string), Value: value})
			}
			_, err := dec.Token()
			return doc, err
		}
		arr := bson.A{}
		for dec.More() {
			value, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		_, err := dec.Token()
		return arr, err
	case json.Number:
		if n, err := t.Int64(); err == nil {
			if n >= math.MinInt32 && n <= math.MaxInt32 {
				return int32(n), nil
			}
			return n, nil
		}
		return t.Float64()
	}
	return tok, nil
}

func bsonToDocument(id string, raw bson.D) (*domain.Document, error) {
	doc := &domain.Document{ID: id}
	body := make(bson.D, 0, len(raw))
	for _, f := range raw {
		switch f.Key {
		case mongoIDField:
		case mongoCreatedAtField:
			doc.CreatedAt = bsonTime(f.Value)
		case mongoUpdatedAtField:
			doc.UpdatedAt = bsonTime(f.Value)
		default:
			body = append(body, f)
		}
	}
	var buf bytes.Buffer
	if err := writeJSONValue(&buf, body); err != nil {
		return nil, domain.NewInternalError(fmt.Sprintf("failed to encode document %s", id), err)
	}
	doc.Body = buf.Bytes()
	return doc, nil
}

// writeJSONValue renders a decoded BSON value as plain JSON, keeping key
// order. ObjectIds become hex strings and Dates RFC 3339 strings.
func writeJSONValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case bson.D:
		buf.WriteByte('{')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(e.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSONValue(buf, e.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case bson.A:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case primitive.ObjectID:
		v = t.Hex()
	case primitive.DateTime:
		v = t.Time().UTC().Format(time.RFC3339Nano)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func bsonTime(v any) time.Time {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	}
	return time.Time{}
}

// mongoError maps driver errors onto the domain error kinds.
func mongoError(op string, collection domain.Collection, id string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound(collection, id)
	}
	if cerr := contextError(op+" "+string(collection), err); cerr != nil {
		return cerr
	}
	if mongo.IsTimeout(err) {
		return domain.NewTimeoutError(fmt.Sprintf("%s %s timed out", op, collection), err)
	}
	if mongo.IsNetworkError(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return domain.NewStorageUnavailableError(fmt.Sprintf("%s %s: mongo unreachable", op, collection), err)
	}
	return domain.NewInternalError(fmt.Sprintf("failed to %s %s", op, collection), err)
}
