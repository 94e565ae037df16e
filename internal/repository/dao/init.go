package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Configuration{},
		&Stand{},
		&ArtworkSubmission{},
		&FileSubmission{},
		&DrawingSubmission{},
		&SubmissionComment{},
		&PartnerComment{},
		&RevisionEntry{},
		&DiscussionMessage{},
	)
}

// DropTables is used by integration tests to reset the schema.
func DropTables(db *gorm.DB) error {
	return db.Migrator().DropTable(
		&DiscussionMessage{},
		&RevisionEntry{},
		&PartnerComment{},
		&SubmissionComment{},
		&DrawingSubmission{},
		&FileSubmission{},
		&ArtworkSubmission{},
		&Stand{},
		&Configuration{},
		&User{},
	)
}
