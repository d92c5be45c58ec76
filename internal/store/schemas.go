package store

// Record schemas enforced by the typed store. Every value is validated
// against its schema on both read and write, so drifted or hand-edited
// records surface as validation failures instead of propagating downstream.

// Schema names a compiled record schema.
type Schema string

const (
	SchemaProfessor      Schema = "professor.json"
	SchemaProfessorIndex Schema = "professor-index.json"
	SchemaPendingRating  Schema = "pending-rating.json"
	SchemaRatingReport   Schema = "rating-report.json"
	SchemaUser           Schema = "user.json"
)

const ratingSchemaJSON = `{
  "$id": "rating.json",
  "type": "object",
  "required": ["id", "professor", "postDate", "overallRating", "presentsMaterialClearly", "recognizesStudentDifficulties", "rating"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "professor": {"type": "string", "minLength": 1},
    "grade": {"type": "string"},
    "gradeLevel": {"type": "string"},
    "courseType": {"type": "string"},
    "postDate": {"type": "string"},
    "overallRating": {"type": "integer", "minimum": 0, "maximum": 4},
    "presentsMaterialClearly": {"type": "integer", "minimum": 0, "maximum": 4},
    "recognizesStudentDifficulties": {"type": "integer", "minimum": 0, "maximum": 4},
    "rating": {"type": "string"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "anonymousIdentifier": {"type": "string"},
    "moderationScores": {
      "type": "object",
      "additionalProperties": {"type": "number", "minimum": 0, "maximum": 1}
    }
  }
}`

const professorSchemaJSON = `{
  "$id": "professor.json",
  "type": "object",
  "required": ["id", "firstName", "lastName", "department", "courses", "numEvals", "overallRating", "materialClear", "studentDifficulties", "reviews"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "firstName": {"type": "string"},
    "lastName": {"type": "string"},
    "department": {"type": "string"},
    "courses": {"type": "array", "items": {"type": "string"}},
    "numEvals": {"type": "integer", "minimum": 0},
    "overallRating": {"type": "number", "minimum": 0, "maximum": 4},
    "materialClear": {"type": "number", "minimum": 0, "maximum": 4},
    "studentDifficulties": {"type": "number", "minimum": 0, "maximum": 4},
    "reviews": {
      "type": "object",
      "additionalProperties": {"type": "array", "items": {"$ref": "rating.json"}}
    },
    "tags": {
      "type": "object",
      "additionalProperties": {"type": "integer", "minimum": 0}
    }
  }
}`

const professorIndexSchemaJSON = `{
  "$id": "professor-index.json",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "firstName", "lastName", "department", "courses", "numEvals", "overallRating", "materialClear", "studentDifficulties"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "firstName": {"type": "string"},
      "lastName": {"type": "string"},
      "department": {"type": "string"},
      "courses": {"type": "array", "items": {"type": "string"}},
      "numEvals": {"type": "integer", "minimum": 0},
      "overallRating": {"type": "number", "minimum": 0, "maximum": 4},
      "materialClear": {"type": "number", "minimum": 0, "maximum": 4},
      "studentDifficulties": {"type": "number", "minimum": 0, "maximum": 4},
      "tags": {
        "type": "object",
        "additionalProperties": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

const pendingRatingSchemaJSON = `{
  "$id": "pending-rating.json",
  "allOf": [{"$ref": "rating.json"}],
  "type": "object",
  "required": ["course", "status"],
  "properties": {
    "course": {"type": "string", "minLength": 1},
    "status": {"enum": ["Queued", "Processing", "Successful", "Failed"]},
    "error": {"type": "string"},
    "providerResponse": {}
  }
}`

const ratingReportSchemaJSON = `{
  "$id": "rating-report.json",
  "type": "object",
  "required": ["ratingId", "professorId", "reports"],
  "properties": {
    "ratingId": {"type": "string", "minLength": 1},
    "professorId": {"type": "string", "minLength": 1},
    "reports": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["reason", "submittedAt"],
        "properties": {
          "email": {"type": "string"},
          "reason": {"type": "string", "minLength": 1},
          "anonymousIdentifier": {"type": "string"},
          "submittedAt": {"type": "string"}
        }
      }
    }
  }
}`

const userSchemaJSON = `{
  "$id": "user.json",
  "type": "object",
  "required": ["id", "username"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "username": {"type": "string", "minLength": 1}
  }
}`

var schemaSources = map[string]string{
	"rating.json":                ratingSchemaJSON,
	string(SchemaProfessor):      professorSchemaJSON,
	string(SchemaProfessorIndex): professorIndexSchemaJSON,
	string(SchemaPendingRating):  pendingRatingSchemaJSON,
	string(SchemaRatingReport):   ratingReportSchemaJSON,
	string(SchemaUser):           userSchemaJSON,
}
