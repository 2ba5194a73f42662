package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/stallfront/stallfront/internal/shop/domain"
)

type identitiesRepo struct {
	q querier
}

const identityColumns = `
	i.id, i.email, i.google_id, i.password_hash,
	i.first_name, i.last_name, i.phone_number, i.address, i.zipcode, i.date_of_birth,
	i.is_seller, i.created_at, i.updated_at,
	sp.organisation_name, sp.address, sp.zipcode, sp.phone_number, sp.website, sp.email,
	sp.facebook, sp.twitter, sp.instagram, sp.linked_in,
	sp.employment_history, sp.business_type`

const identityFrom = `
	FROM identities i
	LEFT JOIN seller_profiles sp ON sp.identity_id = i.id`

func (r *identitiesRepo) CreateIdentity(ctx context.Context, i domain.Identity) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO identities (
			id, email, google_id, password_hash,
			first_name, last_name, phone_number, address, zipcode, date_of_birth,
			is_seller, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.Email, mapOptionalString(i.GoogleID), i.PasswordHash,
		i.Profile.FirstName, i.Profile.LastName, i.Profile.PhoneNumber,
		i.Profile.Address, i.Profile.Zipcode, mapOptionalTime(i.Profile.DateOfBirth),
		mapOptionalBool(i.IsSeller), now, now,
	)
	return mapConstraint(err)
}

func (r *identitiesRepo) GetIdentityByID(ctx context.Context, id string) (domain.Identity, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+identityColumns+identityFrom+` WHERE i.id = ?`, id)
	return scanIdentity(row)
}

func (r *identitiesRepo) GetIdentityByEmail(ctx context.Context, email string) (domain.Identity, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+identityColumns+identityFrom+` WHERE i.email = ?`, email)
	return scanIdentity(row)
}

func (r *identitiesRepo) GetIdentityByGoogleID(ctx context.Context, googleID string) (domain.Identity, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+identityColumns+identityFrom+` WHERE i.google_id = ?`, googleID)
	return scanIdentity(row)
}

func (r *identitiesRepo) AttachGoogleID(ctx context.Context, identityID, googleID string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE identities
		SET google_id = ?, updated_at = ?
		WHERE id = ? AND google_id IS NULL`,
		googleID, time.Now().UTC(), identityID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the identity vanished or a different google_id is already
		// bound; the caller re-reads to tell the cases apart.
		return errors.New("sqlite: google id not attached")
	}
	return nil
}

func (r *identitiesRepo) UpdateProfile(ctx context.Context, identityID string, p domain.Profile, isSeller bool) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE identities
		SET first_name = ?, last_name = ?, phone_number = ?,
		    address = ?, zipcode = ?, date_of_birth = ?,
		    is_seller = ?, updated_at = ?
		WHERE id = ?`,
		p.FirstName, p.LastName, p.PhoneNumber,
		p.Address, p.Zipcode, mapOptionalTime(p.DateOfBirth),
		isSeller, time.Now().UTC(), identityID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *identitiesRepo) UpdateSellerProfile(ctx context.Context, identityID string, sp domain.SellerProfile) error {
	history, err := json.Marshal(sp.EmploymentHistory)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO seller_profiles (
			identity_id, organisation_name, address, zipcode, phone_number,
			website, email, facebook, twitter, instagram, linked_in,
			employment_history, business_type, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (identity_id) DO UPDATE SET
			organisation_name = excluded.organisation_name,
			address = excluded.address,
			zipcode = excluded.zipcode,
			phone_number = excluded.phone_number,
			website = excluded.website,
			email = excluded.email,
			facebook = excluded.facebook,
			twitter = excluded.twitter,
			instagram = excluded.instagram,
			linked_in = excluded.linked_in,
			employment_history = excluded.employment_history,
			business_type = excluded.business_type,
			updated_at = excluded.updated_at`,
		identityID, sp.OrganisationName, sp.Address, sp.Zipcode, sp.PhoneNumber,
		sp.Website, sp.Email, sp.Social.Facebook, sp.Social.Twitter,
		sp.Social.Instagram, sp.Social.LinkedIn,
		string(history), sp.BusinessType, now, now,
	)
	return err
}

func (r *identitiesRepo) SetIsSeller(ctx context.Context, identityID string, isSeller bool) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE identities SET is_seller = ?, updated_at = ? WHERE id = ?`,
		isSeller, time.Now().UTC(), identityID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *identitiesRepo) SetPasswordHash(ctx context.Context, identityID, hash string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE identities SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, time.Now().UTC(), identityID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow maps a zero-row UPDATE to store.ErrNotFound.
func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (domain.Identity, error) {
	var (
		i          domain.Identity
		googleID   sql.NullString
		dob        sql.NullTime
		isSeller   sql.NullBool
		spOrgName  sql.NullString
		spAddress  sql.NullString
		spZipcode  sql.NullString
		spPhone    sql.NullString
		spWebsite  sql.NullString
		spEmail    sql.NullString
		spFacebook sql.NullString
		spTwitter  sql.NullString
		spInsta    sql.NullString
		spLinkedIn sql.NullString
		spHistory  sql.NullString
		spBusiness sql.NullString
	)

	err := row.Scan(
		&i.ID, &i.Email, &googleID, &i.PasswordHash,
		&i.Profile.FirstName, &i.Profile.LastName, &i.Profile.PhoneNumber,
		&i.Profile.Address, &i.Profile.Zipcode, &dob,
		&isSeller, &i.CreatedAt, &i.UpdatedAt,
		&spOrgName, &spAddress, &spZipcode, &spPhone, &spWebsite, &spEmail,
		&spFacebook, &spTwitter, &spInsta, &spLinkedIn,
		&spHistory, &spBusiness,
	)
	if err != nil {
		return domain.Identity{}, mapNotFound(err)
	}

	i.GoogleID = mapNullStringPtr(googleID)
	i.Profile.DateOfBirth = mapNullTimePtr(dob)
	i.IsSeller = mapNullBoolPtr(isSeller)

	if spOrgName.Valid {
		sp := &domain.SellerProfile{
			OrganisationName: spOrgName.String,
			Address:          mapNullString(spAddress),
			Zipcode:          mapNullString(spZipcode),
			PhoneNumber:      mapNullString(spPhone),
			Website:          mapNullString(spWebsite),
			Email:            mapNullString(spEmail),
			Social: domain.SocialHandles{
				Facebook:  mapNullString(spFacebook),
				Twitter:   mapNullString(spTwitter),
				Instagram: mapNullString(spInsta),
				LinkedIn:  mapNullString(spLinkedIn),
			},
			BusinessType: mapNullString(spBusiness),
		}
		if spHistory.Valid && spHistory.String != "" {
			if err := json.Unmarshal([]byte(spHistory.String), &sp.EmploymentHistory); err != nil {
				return domain.Identity{}, err
			}
		}
		i.SellerProfile = sp
	}

	return i, nil
}
