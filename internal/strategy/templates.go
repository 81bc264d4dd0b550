package strategy

import (
	"fmt"
	"strings"
)

// Template is one recognized question shape.
//
// Templates are evaluated in library order and the first one whose Match
// accepts the question and whose Build succeeds wins. A template is only
// considered when every table in Tables exists in the dataset's catalog, so
// a library written for one schema stays silent against another.
//
// Match sees the synonym-normalized text. It must not accept a question the
// template does not answer; an unmatched question is reported unsupported.
//
// Build fills in a fresh strategy. It may decline by returning false, for
// example when the name it needs cannot be extracted, and resolution then
// continues with the next template. Names must be taken from Question.Raw.
type Template struct {
	Name   string
	Tables []string
	Match  func(q string) bool
	Build  func(q Question, s *Strategy) bool
}

// genreVocabulary lists the categories recognized for cross-category
// membership questions.
var genreVocabulary = []string{"Rock", "Jazz", "Blues", "Metal", "Latin", "Reggae", "Classical"}

// courseVocabulary lists the course titles recognized for multi-membership
// questions.
var courseVocabulary = []string{"Mathematics", "Physics", "Chemistry"}

// DefaultTemplates returns the template library in evaluation order.
func DefaultTemplates() []Template {
	return []Template{
		tracksByArtist(),
		artistWithMostTracks(),
		coursesWithMostStudents(),
		customersAcrossGenres(),
		studentsInCourses(),
		coursesTakenByStudent(),
	}
}

func tracksByArtist() Template {
	return Template{
		Name:   "tracks_by_artist",
		Tables: []string{"Artist", "Album", "Track"},
		Match: func(q string) bool {
			return containsAll(q, "track", " by ")
		},
		Build: func(q Question, s *Strategy) bool {
			artist, ok := nameAfter(q.Raw, "by")
			if !ok {
				return false
			}
			s.Tables = []string{"Track"}
			s.Joins = []Join{
				{Kind: JoinInner, Table: "Album", LeftKey: "Album.AlbumId", RightKey: "Track.AlbumId"},
				{Kind: JoinInner, Table: "Artist", LeftKey: "Artist.ArtistId", RightKey: "Album.ArtistId"},
			}
			s.Filters = []string{"UPPER(Artist.Name) = " + quoteLiteral(artist)}
			s.SelectColumns = []string{"Track.Name"}
			return true
		},
	}
}

func artistWithMostTracks() Template {
	return Template{
		Name:   "artist_with_most_tracks",
		Tables: []string{"Artist", "Album", "Track"},
		Match: func(q string) bool {
			return containsAll(q, "artist", "most", "track")
		},
		Build: func(q Question, s *Strategy) bool {
			s.Tables = []string{"Artist"}
			s.Joins = []Join{
				{Kind: JoinInner, Table: "Album", LeftKey: "Artist.ArtistId", RightKey: "Album.ArtistId"},
				{Kind: JoinInner, Table: "Track", LeftKey: "Album.AlbumId", RightKey: "Track.AlbumId"},
			}
			s.SelectColumns = []string{"Artist.Name", "COUNT(Track.TrackId) AS TrackCount"}
			s.GroupBy = []string{"Artist.ArtistId", "Artist.Name"}
			s.OrderBy = &OrderBy{Expr: "TrackCount", Direction: Desc}
			s.Limit = 1
			return true
		},
	}
}

func coursesWithMostStudents() Template {
	return Template{
		Name:   "courses_with_most_students",
		Tables: []string{"Course", "Enrollment"},
		Match: func(q string) bool {
			return containsAll(q, "course", "most", "student")
		},
		Build: func(q Question, s *Strategy) bool {
			s.Tables = []string{"Course"}
			s.Joins = []Join{
				{Kind: JoinInner, Table: "Enrollment", LeftKey: "Course.CourseId", RightKey: "Enrollment.CourseId"},
			}
			s.SelectColumns = []string{"Course.Title", "COUNT(Enrollment.StudentId) AS StudentCount"}
			s.GroupBy = []string{"Course.CourseId", "Course.Title"}
			s.OrderBy = &OrderBy{Expr: "StudentCount", Direction: Desc}
			s.Limit = 5
			return true
		},
	}
}

func customersAcrossGenres() Template {
	return Template{
		Name:   "customers_across_genres",
		Tables: []string{"Customer", "Invoice", "InvoiceLine", "Track", "Genre"},
		Match: func(q string) bool {
			return strings.Contains(q, "customer") &&
				containsAny(q, "bought", "buy", "purchase") &&
				containsAny(q, " and ", "both", "every") &&
				len(mentioned(q, genreVocabulary)) >= 2
		},
		Build: func(q Question, s *Strategy) bool {
			genres := mentioned(q.Text, genreVocabulary)
			s.Tables = []string{"Customer"}
			s.Joins = []Join{
				{Kind: JoinInner, Table: "Invoice", LeftKey: "Customer.CustomerId", RightKey: "Invoice.CustomerId"},
				{Kind: JoinInner, Table: "InvoiceLine", LeftKey: "Invoice.InvoiceId", RightKey: "InvoiceLine.InvoiceId"},
				{Kind: JoinInner, Table: "Track", LeftKey: "InvoiceLine.TrackId", RightKey: "Track.TrackId"},
				{Kind: JoinInner, Table: "Genre", LeftKey: "Track.GenreId", RightKey: "Genre.GenreId"},
			}
			s.Filters = []string{fmt.Sprintf("Genre.Name IN (%s)", quoteList(genres))}
			s.SelectColumns = []string{"Customer.FirstName", "Customer.LastName", "Customer.Email"}
			s.GroupBy = []string{"Customer.CustomerId", "Customer.FirstName", "Customer.LastName", "Customer.Email"}
			s.Having = fmt.Sprintf("COUNT(DISTINCT Genre.Name) = %d", len(genres))
			return true
		},
	}
}

func studentsInCourses() Template {
	return Template{
		Name:   "students_in_courses",
		Tables: []string{"Student", "Enrollment", "Course"},
		Match: func(q string) bool {
			return containsAll(q, "student", "and")
		},
		Build: func(q Question, s *Strategy) bool {
			courses := mentioned(q.Text, courseVocabulary)
			if len(courses) < 2 {
				return false
			}
			s.Tables = []string{"Student"}
			s.Joins = []Join{
				{Kind: JoinInner, Table: "Enrollment", LeftKey: "Student.StudentId", RightKey: "Enrollment.StudentId"},
				{Kind: JoinInner, Table: "Course", LeftKey: "Enrollment.CourseId", RightKey: "Course.CourseId"},
			}
			s.Filters = []string{fmt.Sprintf("Course.Title IN (%s)", quoteList(courses))}
			s.SelectColumns = []string{"Student.Name", "Student.Email"}
			s.GroupBy = []string{"Student.StudentId", "Student.Name", "Student.Email"}
			s.Having = fmt.Sprintf("COUNT(DISTINCT Course.Title) = %d", len(courses))
			return true
		},
	}
}

func coursesTakenByStudent() Template {
	return Template{
		Name:   "courses_taken_by_student",
		Tables: []string{"Student", "Enrollment", "Course"},
		Match: func(q string) bool {
			return containsAll(q, "course") && containsAny(q, "taken by", "enrolled by", "enrolled in")
		},
		Build: func(q Question, s *Strategy) bool {
			name, ok := nameAfter(q.Raw, "by")
			if !ok {
				// "What courses is Alice enrolled in?"
				name, ok = wordBetween(q.Raw, "is", "enrolled in")
			}
			if !ok {
				return false
			}
			s.Tables = []string{"Student"}
			s.Joins = []Join{
				{Kind: JoinInner, Table: "Enrollment", LeftKey: "Student.StudentId", RightKey: "Enrollment.StudentId"},
				{Kind: JoinInner, Table: "Course", LeftKey: "Enrollment.CourseId", RightKey: "Course.CourseId"},
			}
			s.Filters = []string{"UPPER(Student.FirstName) = " + quoteLiteral(name)}
			s.SelectColumns = []string{"Course.Title"}
			return true
		},
	}
}
