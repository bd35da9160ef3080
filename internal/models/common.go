// server/internal/models/common.go
package models

// MediaPointer references an image stored on S3 or a compatible service.
type MediaPointer struct {
	ID       string `bson:"id" json:"id"`             // storage object key, used for delete
	URL      string `bson:"url" json:"url"`           // public URL (CloudFront or S3)
	FileName string `bson:"fileName" json:"fileName"` // original file name
}

// Buyer holds the identity of the person a car was sold to. The passport
// number is the required identity document for both cash and installment
// sales.
type Buyer struct {
	Name     string `bson:"name" json:"name"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Passport string `bson:"passport" json:"passport"`
}
