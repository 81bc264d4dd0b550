// Package testutil provides sample datasets and helpers shared by tests.
package testutil

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/nlsql/internal/config"
)

// ChinookTrackCount is the number of rows in the fixture's Track table.
const ChinookTrackCount = 3503

// ChinookTables lists the fixture's tables as the catalog reports them.
var ChinookTables = []string{
	"Album", "Artist", "Customer", "Genre", "Invoice", "InvoiceLine",
	"MediaType", "Playlist", "PlaylistTrack", "Track",
}

// UniversityTables lists the university fixture's tables in catalog order.
var UniversityTables = []string{"Course", "Enrollment", "Student"}

const chinookSchema = `
CREATE TABLE Artist (ArtistId INTEGER PRIMARY KEY, Name TEXT);
CREATE TABLE Album (
	AlbumId INTEGER PRIMARY KEY,
	Title TEXT NOT NULL,
	ArtistId INTEGER NOT NULL REFERENCES Artist(ArtistId)
);
CREATE TABLE Genre (GenreId INTEGER PRIMARY KEY, Name TEXT);
CREATE TABLE MediaType (MediaTypeId INTEGER PRIMARY KEY, Name TEXT);
CREATE TABLE Track (
	TrackId INTEGER PRIMARY KEY,
	Name TEXT NOT NULL,
	AlbumId INTEGER REFERENCES Album(AlbumId),
	MediaTypeId INTEGER NOT NULL DEFAULT 1 REFERENCES MediaType(MediaTypeId),
	GenreId INTEGER REFERENCES Genre(GenreId),
	Milliseconds INTEGER NOT NULL DEFAULT 0,
	UnitPrice NUMERIC(10,2) NOT NULL DEFAULT 0.99
);
CREATE TABLE Customer (
	CustomerId INTEGER PRIMARY KEY,
	FirstName TEXT NOT NULL,
	LastName TEXT NOT NULL,
	Email TEXT NOT NULL,
	Country TEXT
);
CREATE TABLE Invoice (
	InvoiceId INTEGER PRIMARY KEY,
	CustomerId INTEGER NOT NULL REFERENCES Customer(CustomerId),
	InvoiceDate TEXT NOT NULL,
	Total NUMERIC(10,2) NOT NULL
);
CREATE TABLE InvoiceLine (
	InvoiceLineId INTEGER PRIMARY KEY,
	InvoiceId INTEGER NOT NULL REFERENCES Invoice(InvoiceId),
	TrackId INTEGER NOT NULL REFERENCES Track(TrackId),
	UnitPrice NUMERIC(10,2) NOT NULL,
	Quantity INTEGER NOT NULL
);
CREATE TABLE Playlist (PlaylistId INTEGER PRIMARY KEY, Name TEXT);
CREATE TABLE PlaylistTrack (
	PlaylistId INTEGER NOT NULL REFERENCES Playlist(PlaylistId),
	TrackId INTEGER NOT NULL REFERENCES Track(TrackId),
	PRIMARY KEY (PlaylistId, TrackId)
);

INSERT INTO Artist VALUES (1, 'AC/DC'), (2, 'Accept'), (3, 'Aerosmith');
INSERT INTO Album VALUES
	(1, 'For Those About To Rock We Salute You', 1),
	(2, 'Let There Be Rock', 1),
	(3, 'Balls to the Wall', 2),
	(4, 'Big Ones', 3);
INSERT INTO Genre VALUES (1, 'Rock'), (2, 'Jazz'), (3, 'Metal'), (4, 'Blues');
INSERT INTO MediaType VALUES (1, 'MPEG audio file'), (2, 'AAC audio file');
INSERT INTO Track (TrackId, Name, AlbumId, GenreId) VALUES
	(1, 'For Those About To Rock (We Salute You)', 1, 1),
	(2, 'Put The Finger On You', 1, 1),
	(3, 'Go Down', 2, 1),
	(4, 'Balls to the Wall', 3, 3),
	(5, 'Walk On Water', 4, 1),
	(6, 'Love In An Elevator', 4, 2);
INSERT INTO Customer VALUES
	(1, 'Luís', 'Gonçalves', 'luisg@embraer.com.br', 'Brazil'),
	(2, 'Leonie', 'Köhler', 'leonekohler@surfeu.de', 'Germany'),
	(3, 'François', 'Tremblay', 'ftremblay@gmail.com', 'Canada');
INSERT INTO Invoice VALUES
	(1, 1, '2009-01-01', 0.99),
	(2, 1, '2009-02-01', 0.99),
	(3, 2, '2009-03-01', 0.99),
	(4, 3, '2009-04-01', 0.99);
INSERT INTO InvoiceLine VALUES
	(1, 1, 1, 0.99, 1),
	(2, 2, 6, 0.99, 1),
	(3, 3, 2, 0.99, 1),
	(4, 4, 6, 0.99, 1);
INSERT INTO Playlist VALUES (1, 'Music'), (2, 'Grunge');
INSERT INTO PlaylistTrack VALUES (1, 1), (1, 2), (2, 5);
`

const universitySchema = `
CREATE TABLE Student (
	StudentId INTEGER PRIMARY KEY,
	FirstName TEXT NOT NULL,
	Name TEXT NOT NULL,
	Email TEXT NOT NULL
);
CREATE TABLE Course (CourseId INTEGER PRIMARY KEY, Title TEXT NOT NULL);
CREATE TABLE Enrollment (
	EnrollmentId INTEGER PRIMARY KEY,
	StudentId INTEGER NOT NULL REFERENCES Student(StudentId),
	CourseId INTEGER NOT NULL REFERENCES Course(CourseId)
);

INSERT INTO Student VALUES
	(1, 'Alice', 'Alice Smith', 'alice@uni.edu'),
	(2, 'Bob', 'Bob Jones', 'bob@uni.edu'),
	(3, 'Carol', 'Carol White', 'carol@uni.edu');
INSERT INTO Course VALUES (1, 'Mathematics'), (2, 'Physics'), (3, 'Chemistry');
INSERT INTO Enrollment VALUES
	(1, 1, 1), (2, 1, 2),
	(3, 2, 1),
	(4, 3, 1), (5, 3, 2), (6, 3, 3);
`

// ChinookDB builds the music-store fixture in a temp directory and returns
// its path. Tracks beyond the named six have no album and no genre.
func ChinookDB(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chinook.db")
	build(t, path, chinookSchema, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare("INSERT INTO Track (TrackId, Name) VALUES (?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()
		for id := 7; id <= ChinookTrackCount; id++ {
			if _, err := stmt.Exec(id, fmt.Sprintf("Untitled %d", id)); err != nil {
				return err
			}
		}
		return nil
	})
	return path
}

// UniversityDB builds the university fixture and returns its path.
func UniversityDB(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "university.db")
	build(t, path, universitySchema, nil)
	return path
}

// Config returns a configuration whose chinook and university datasets point
// at freshly built fixtures and whose history store lives in a temp dir.
func Config(t testing.TB) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Datasets = map[string]config.DatasetConfig{
		"chinook":    {Driver: config.DriverSQLite, Path: ChinookDB(t)},
		"university": {Driver: config.DriverSQLite, Path: UniversityDB(t)},
	}
	cfg.HistoryDB = filepath.Join(t.TempDir(), "history.db")
	return cfg
}

func build(t testing.TB, path, schema string, fill func(*sql.Tx) error) {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin fixture: %v", err)
	}
	if _, err := tx.Exec(schema); err != nil {
		tx.Rollback()
		t.Fatalf("create fixture: %v", err)
	}
	if fill != nil {
		if err := fill(tx); err != nil {
			tx.Rollback()
			t.Fatalf("fill fixture: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit fixture: %v", err)
	}
}
