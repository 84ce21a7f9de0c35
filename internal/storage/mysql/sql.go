package mysql

const getPropertySQL = `
SELECT id, tenant_id, city_id, category_id, name, description, address, image
FROM properties
WHERE id = ? AND deleted_at IS NULL
`

// Composed read model: property joined with city and category names.
// Image URLs come from a second query (listImagesSQL).
const getPropertyViewSQL = `
SELECT
  p.id,
  p.name,
  p.description,
  p.address,
  p.image,
  c.name  AS city,
  g.name  AS category
FROM properties p
JOIN cities c          ON c.id = p.city_id
JOIN property_categories g ON g.id = p.category_id
WHERE p.id = ? AND p.deleted_at IS NULL
`

const listImagesSQL = `
SELECT url
FROM property_images
WHERE property_id = ?
ORDER BY sort_order, id
`

const listActiveRoomsSQL = `
SELECT id, property_id, name, description, image, base_price, qty, capacity
FROM rooms
WHERE property_id = ? AND deleted_at IS NULL
ORDER BY id
`

const getActiveRoomSQL = `
SELECT id, property_id, name, description, image, base_price, qty, capacity
FROM rooms
WHERE id = ? AND deleted_at IS NULL
`

const getRoomAnySQL = `
SELECT id, property_id, name, description, image, base_price, qty, capacity, deleted_at
FROM rooms
WHERE id = ?
`

const listTenantRoomsSQL = `
SELECT r.id, r.property_id, r.name, r.description, r.image, r.base_price, r.qty, r.capacity, r.deleted_at
FROM rooms r
JOIN properties p ON p.id = r.property_id
WHERE p.tenant_id = ? AND p.deleted_at IS NULL
ORDER BY r.id
`

// Child-row loaders use a dynamically built IN (...) over room IDs; the
// prefixes below get the placeholder list appended.
const ratesByRoomsPrefix = `
SELECT id, room_id, start_date, end_date, modifier_type, modifier_value, created_at
FROM peak_season_rates
WHERE room_id IN (%s)
ORDER BY room_id, created_at, id
`

const overridesByRoomsPrefix = `
SELECT room_id, date, available
FROM room_availability
WHERE room_id IN (%s) AND date IN (%s)
`

const listReviewsSQL = `
SELECT v.id, u.name, u.profile_photo, v.rating, v.comment, v.created_at
FROM reviews v
JOIN users u ON u.id = v.user_id
WHERE v.property_id = ?
ORDER BY v.created_at DESC, v.id DESC
`

const insertRoomSQL = `
INSERT INTO rooms (property_id, name, description, image, base_price, qty, capacity)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const updateRoomSQL = `
UPDATE rooms
SET name = ?, description = ?, image = ?, base_price = ?, qty = ?, capacity = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

const setRoomDeletedSQL = `
UPDATE rooms
SET deleted_at = IF(?, CURRENT_TIMESTAMP, NULL)
WHERE id = ?
`

const insertRateSQL = `
INSERT INTO peak_season_rates (room_id, start_date, end_date, modifier_type, modifier_value, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

const listRatesPageSQL = `
SELECT id, room_id, start_date, end_date, modifier_type, modifier_value, created_at
FROM peak_season_rates
WHERE room_id = ?
ORDER BY start_date, id
LIMIT ? OFFSET ?
`

const countRatesSQL = `
SELECT COUNT(*) FROM peak_season_rates WHERE room_id = ?
`

const upsertOverrideSQL = `
INSERT INTO room_availability (room_id, date, available)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE available = VALUES(available)
`

const deleteOverrideSQL = `
DELETE FROM room_availability WHERE room_id = ? AND date = ?
`

const insertBookingSQL = `
INSERT INTO bookings (code, user_id, room_id, check_in, check_out, qty, total_price, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const getBookingByCodeSQL = `
SELECT id, code, user_id, room_id, check_in, check_out, qty, total_price, status, created_at
FROM bookings
WHERE code = ?
`

const setBookingStatusSQL = `
UPDATE bookings SET status = ? WHERE id = ?
`

const listStaleWaitingSQL = `
SELECT id, code, user_id, room_id, check_in, check_out, qty, total_price, status, created_at
FROM bookings
WHERE status = 'WAITING_PAYMENT'
  AND created_at < (CURRENT_TIMESTAMP - INTERVAL ? SECOND)
ORDER BY created_at
`
