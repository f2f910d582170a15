package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/staff-admin/internal/domain"
)

// StaffRepository handles persistence for staff records.
type StaffRepository interface {
	Create(ctx context.Context, record *domain.StaffRecord) error
	Update(ctx context.Context, record *domain.StaffRecord) error
	GetByID(ctx context.Context, id string) (*domain.StaffRecord, error)
	MSCBTaken(ctx context.Context, mscb, exceptID string) (bool, error)
	List(ctx context.Context, filter StaffFilter) ([]domain.StaffRecord, int, error)
}

// StaffFilter defines paging for staff listing.
type StaffFilter struct {
	Limit  int
	Offset int
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

const staffColumns = `
        s.id::text, s.mscb, s.name, s.gender, s.is_permanent, s.date_of_birth,
        s.phone, s.main_specialization, s.unit_id::text, u.name, s.qualification_code, s.start_date`

func (r *staffRepository) Create(ctx context.Context, record *domain.StaffRecord) error {
	const query = `
        INSERT INTO staff_records (id, mscb, name, gender, is_permanent, date_of_birth,
            phone, main_specialization, unit_id, qualification_code, start_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`

	_, err := r.pool.Exec(ctx, query, append([]any{record.ID}, staffArgs(record)...)...)
	return err
}

func (r *staffRepository) Update(ctx context.Context, record *domain.StaffRecord) error {
	const query = `
        UPDATE staff_records
        SET mscb=$2, name=$3, gender=$4, is_permanent=$5, date_of_birth=$6, phone=$7,
            main_specialization=$8, unit_id=$9, qualification_code=$10, start_date=$11, updated_at=NOW()
        WHERE id::text=$1`

	cmd, err := r.pool.Exec(ctx, query, append([]any{record.ID}, staffArgs(record)...)...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffRecord, error) {
	query := `SELECT` + staffColumns + `
        FROM staff_records s JOIN units u ON u.id = s.unit_id
        WHERE s.id::text=$1`

	record, err := scanStaff(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *staffRepository) MSCBTaken(ctx context.Context, mscb, exceptID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM staff_records WHERE mscb=$1 AND id::text<>$2)`
	var taken bool
	if err := r.pool.QueryRow(ctx, query, mscb, exceptID).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.StaffRecord, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM staff_records`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + staffColumns + `
        FROM staff_records s JOIN units u ON u.id = s.unit_id
        ORDER BY s.created_at DESC
        LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []domain.StaffRecord{}
	for rows.Next() {
		record, err := scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *record)
	}
	return result, total, rows.Err()
}

func staffArgs(record *domain.StaffRecord) []any {
	var startDate *time.Time
	if record.StartDate != nil && !record.StartDate.IsZero() {
		t := record.StartDate.Time
		startDate = &t
	}
	return []any{
		record.MSCB,
		record.Name,
		string(record.Gender),
		record.IsPermanent,
		record.DateOfBirth.Time,
		record.Phone,
		record.MainSpecialization,
		record.Unit.ID,
		string(record.QualificationCode),
		startDate,
	}
}

func scanStaff(row pgx.Row) (*domain.StaffRecord, error) {
	var (
		record        domain.StaffRecord
		gender        string
		qualification string
		dateOfBirth   time.Time
		startDate     *time.Time
	)
	if err := row.Scan(
		&record.ID,
		&record.MSCB,
		&record.Name,
		&gender,
		&record.IsPermanent,
		&dateOfBirth,
		&record.Phone,
		&record.MainSpecialization,
		&record.Unit.ID,
		&record.Unit.Name,
		&qualification,
		&startDate,
	); err != nil {
		return nil, err
	}
	record.Gender = domain.Gender(gender)
	record.QualificationCode = domain.Qualification(qualification)
	record.DateOfBirth = domain.Date{Time: dateOfBirth.UTC()}
	if startDate != nil {
		record.StartDate = &domain.Date{Time: startDate.UTC()}
	}
	return &record, nil
}
