package binder

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"reflect"
)

// DefaultMaxUploadSize limits multipart request bodies.
const DefaultMaxUploadSize = 10 << 20

// FileUpload is an uploaded file read into memory.
type FileUpload struct {
	Filename string
	Size     int64
	Header   textproto.MIMEHeader
	Content  []byte
}

// ContentType sniffs the MIME type from the content. The client-declared
// header is ignored because it is trivially spoofed.
func (f FileUpload) ContentType() string {
	if len(f.Content) == 0 {
		return ""
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(f.Content))
	return mt
}

var fileUploadType = reflect.TypeFor[FileUpload]()

// File binds multipart files into FileUpload or *FileUpload fields tagged
// `file:"name"`. Non-multipart requests are skipped.
func File() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mt != "multipart/form-data" {
			return ErrBinderNotApplicable
		}

		if r.MultipartForm == nil {
			r.Body = http.MaxBytesReader(nil, r.Body, DefaultMaxUploadSize)
			if err := r.ParseMultipartForm(DefaultMaxUploadSize); err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					return ErrTooLarge
				}
				return fmt.Errorf("%w: %v", ErrInvalidForm, err)
			}
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("%w: target must be a pointer to struct", ErrInvalidForm)
		}
		rv = rv.Elem()
		rt := rv.Type()

		for i := range rv.NumField() {
			field := rv.Field(i)
			sf := rt.Field(i)
			tag := sf.Tag.Get("file")
			if !field.CanSet() || tag == "" || tag == "-" {
				continue
			}

			headers := r.MultipartForm.File[tag]
			if len(headers) == 0 {
				continue
			}

			upload, err := readFileHeader(headers[0])
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidForm, tag, err)
			}

			switch {
			case sf.Type == fileUploadType:
				field.Set(reflect.ValueOf(upload))
			case sf.Type.Kind() == reflect.Pointer && sf.Type.Elem() == fileUploadType:
				field.Set(reflect.ValueOf(&upload))
			default:
				return fmt.Errorf("%w: unsupported type for file field %s: %s", ErrInvalidForm, sf.Name, sf.Type)
			}
		}
		return nil
	}
}

func readFileHeader(fh *multipart.FileHeader) (FileUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return FileUpload{}, err
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return FileUpload{}, err
	}

	return FileUpload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Header:   fh.Header,
		Content:  content,
	}, nil
}
