package inmemdb

import (
	"context"
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"

	"sekolahku/core/checklist"
	"sekolahku/core/grade"
	"sekolahku/core/student"
	"sekolahku/core/subject"
	"sekolahku/core/user"
)

// Seed loads the demo fixtures: the grading and checklist catalogs, a 7A
// register, one account per role and a term's worth of scores.
func Seed(db *DB) error {
	ctx := context.Background()

	gradeRepo := NewGradeRepository(db)
	for i, name := range []string{"Ulangan 1", "Ulangan 2", "Ulangan 3", "Ulangan 4", "Ulangan 5"} {
		id := fmt.Sprintf("ulangan-%d", i+1)
		db.grade.categories[id] = &grade.Category{ID: id, Name: name, Active: true, Position: i + 1}
	}

	items := []checklist.Item{
		{
			ID:          "rapor-semester",
			Title:       "Konfirmasi Penerimaan Rapor Semester",
			Description: "Konfirmasi bahwa Anda telah menerima dan memeriksa rapor semester anak",
			Category:    checklist.CategoryAcademic,
			Required:    true,
			Deadline:    null.TimeFrom(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)),
			Position:    1,
		},
		{
			ID:          "pembayaran-spp",
			Title:       "Konfirmasi Pembayaran SPP Bulan Ini",
			Description: "Konfirmasi pembayaran SPP untuk bulan berjalan",
			Category:    checklist.CategoryAdministrative,
			Required:    true,
			Deadline:    null.TimeFrom(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)),
			Position:    2,
		},
		{
			ID:          "izin-kegiatan",
			Title:       "Izin Kegiatan Ekstrakurikuler",
			Description: "Berikan izin untuk kegiatan ekstrakurikuler anak",
			Category:    checklist.CategoryActivity,
			Position:    3,
		},
		{
			ID:          "data-kesehatan",
			Title:       "Update Data Kesehatan Anak",
			Description: "Perbarui informasi kesehatan dan alergi anak jika ada perubahan",
			Category:    checklist.CategoryAdministrative,
			Position:    4,
		},
		{
			ID:          "persetujuan-foto",
			Title:       "Persetujuan Penggunaan Foto",
			Description: "Izin penggunaan foto anak untuk dokumentasi sekolah",
			Category:    checklist.CategoryAdministrative,
			Position:    5,
		},
		{
			ID:          "konsultasi-guru",
			Title:       "Konfirmasi Jadwal Konsultasi",
			Description: "Konfirmasi kehadiran dalam sesi konsultasi dengan wali kelas",
			Category:    checklist.CategoryAcademic,
			Required:    true,
			Deadline:    null.TimeFrom(time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)),
			Position:    6,
		},
	}
	for i := range items {
		db.checklist.items[items[i].ID] = &items[i]
	}

	stdRepo := NewStudentRepository(db)
	students := []student.Student{
		{
			Name:             "Ahmad Rizki",
			ClassName:        "7A",
			NISN:             "1234567890",
			Email:            "ahmad.rizki@email.com",
			Phone:            "081234567890",
			Address:          "Jl. Merdeka No. 123, Jakarta",
			GuardianName:     "Budi Santoso",
			Extracurriculars: []string{"Pramuka", "Basket", "English Club"},
		},
		{
			Name:             "Siti Nurhaliza",
			ClassName:        "7A",
			NISN:             "1234567891",
			Email:            "siti.nurhaliza@email.com",
			Phone:            "081234567892",
			Address:          "Jl. Sudirman No. 456, Jakarta",
			GuardianName:     "Andi Wijaya",
			Extracurriculars: []string{"Pramuka", "Paduan Suara", "Tari"},
		},
		{
			Name:             "Budi Santoso",
			ClassName:        "7A",
			NISN:             "1234567892",
			Email:            "budi.santoso@email.com",
			Phone:            "081234567894",
			Address:          "Jl. Thamrin No. 789, Jakarta",
			GuardianName:     "Dewi Sartika",
			Extracurriculars: []string{"Pramuka", "Sepak Bola"},
		},
	}
	now := time.Now().UTC()
	tallies := []student.AttendanceTally{
		{Present: 85, Sick: 3, Permission: 2, Absent: 1, UpdatedAt: now},
		{Present: 88, Sick: 2, Permission: 1, UpdatedAt: now},
		{Present: 82, Sick: 4, Permission: 3, Absent: 2, UpdatedAt: now},
	}
	for i, std := range students {
		std.CreatedAt, std.UpdatedAt = now, now
		saved, err := stdRepo.CreateStudent(ctx, std)
		if err != nil {
			return err
		}
		students[i] = saved
		tallies[i].StudentID = saved.ID
		if _, _, err = stdRepo.UpsertAttendance(ctx, tallies[i]); err != nil {
			return err
		}
	}

	usrRepo := NewUserRepository(db)
	teacher, err := seedUser(ctx, usrRepo, user.User{
		Name:     "Siti Nurhaliza, S.Pd",
		Username: "guru123",
		Email:    "guru@sekolahku.id",
		Role:     user.RoleTeacher,
	}, "guru123")
	if err != nil {
		return err
	}
	if _, err = seedUser(ctx, usrRepo, user.User{
		Name:            "Ahmad Rizki",
		Username:        "siswa123",
		Email:           "siswa@sekolahku.id",
		Role:            user.RoleStudent,
		LinkedStudentID: null.StringFrom(students[0].ID),
	}, "siswa123"); err != nil {
		return err
	}
	if _, err = seedUser(ctx, usrRepo, user.User{
		Name:            "Budi Santoso",
		Username:        "orangtua123",
		Email:           "orangtua@sekolahku.id",
		Role:            user.RoleParent,
		LinkedStudentID: null.StringFrom(students[0].ID),
	}, "orangtua123"); err != nil {
		return err
	}
	if _, err = seedUser(ctx, usrRepo, user.User{
		Name:     "Dr. Bambang Sutrisno",
		Username: "admin123",
		Email:    "admin@sekolahku.id",
		Role:     user.RoleAdmin,
	}, "admin123"); err != nil {
		return err
	}

	subRepo := NewSubjectRepository(db)
	subjects := []subject.Subject{
		{Name: "Matematika", Code: "MTK", KKM: 75, TeacherID: teacher.ID, Semester: "Ganjil 2024/2025", Credits: 4, Category: subject.CategoryRequired},
		{Name: "Bahasa Indonesia", Code: "BIN", KKM: 70, Semester: "Ganjil 2024/2025", Credits: 4, Category: subject.CategoryRequired},
		{Name: "Bahasa Inggris", Code: "BIG", KKM: 70, Semester: "Ganjil 2024/2025", Credits: 3, Category: subject.CategoryRequired},
		{Name: "IPA (Ilmu Pengetahuan Alam)", Code: "IPA", KKM: 75, Semester: "Ganjil 2024/2025", Credits: 4, Category: subject.CategoryRequired},
		{Name: "IPS (Ilmu Pengetahuan Sosial)", Code: "IPS", KKM: 70, Semester: "Ganjil 2024/2025", Credits: 3, Category: subject.CategoryRequired},
		{Name: "Seni Budaya", Code: "SBK", KKM: 70, Semester: "Ganjil 2024/2025", Credits: 2, Category: subject.CategoryElective},
	}
	for i, sub := range subjects {
		sub.CreatedAt, sub.UpdatedAt = now, now
		saved, err := subRepo.CreateSubject(ctx, sub)
		if err != nil {
			return err
		}
		subjects[i] = saved
	}

	// a term's worth of scores for the first student
	midFinals := []grade.MidFinal{
		{StudentID: students[0].ID, SubjectID: subjects[0].ID, UTS: null.Float64From(85), UAS: null.Float64From(88)},
		{StudentID: students[0].ID, SubjectID: subjects[1].ID, UTS: null.Float64From(78), UAS: null.Float64From(82)},
		{StudentID: students[0].ID, SubjectID: subjects[2].ID, UTS: null.Float64From(72)},
	}
	for _, g := range midFinals {
		if _, _, err := gradeRepo.UpsertMidFinal(ctx, g); err != nil {
			return err
		}
	}
	dailies := []grade.Daily{
		{StudentID: students[0].ID, SubjectID: subjects[0].ID, CategoryName: "Ulangan 1", Score: null.Float64From(80)},
		{StudentID: students[0].ID, SubjectID: subjects[0].ID, CategoryName: "Ulangan 2", Score: null.Float64From(90)},
		{StudentID: students[0].ID, SubjectID: subjects[1].ID, CategoryName: "Ulangan 1", Score: null.Float64From(75)},
	}
	for _, d := range dailies {
		if _, _, err := gradeRepo.UpsertDaily(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func seedUser(ctx context.Context, repo *userRepository, usr user.User, pwd string) (user.User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return user.User{}, err
	}
	usr.SetActive(true)
	now := time.Now().UTC()
	usr.CreatedAt, usr.UpdatedAt = now, now
	return repo.CreateUser(ctx, usr)
}
