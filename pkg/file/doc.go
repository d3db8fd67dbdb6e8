// Package file stores uploaded objects such as avatars and blog cover images.
//
// Storage has two implementations selected by Config.Driver:
//
//   - LocalStorage writes under a directory and serves objects from a base
//     URL. It is the default and suits development.
//   - S3Storage puts objects into an S3-compatible bucket through
//     aws-sdk-go-v2. A custom endpoint and path-style addressing make it work
//     with MinIO and DigitalOcean Spaces.
//
// # Usage
//
//	store, err := file.NewFromConfig(ctx, cfg)
//	if err != nil {
//		return err
//	}
//
//	if err := file.Validate(upload.Data, upload.ContentType(), 2<<20, file.ImageTypes...); err != nil {
//		return err
//	}
//	obj, err := store.Put(ctx, file.NewKey("avatars", upload.ContentType()), upload.Data, upload.ContentType())
//
// Validate rejects empty, oversized and disallowed uploads with ErrEmptyFile,
// ErrFileTooLarge and ErrMIMETypeNotAllowed. S3 API failures are classified
// through smithy-go into ErrFileNotFound, ErrAccessDenied and friends.
package file
