package mysql

const listingColumns = `id, host_id, category, title, description, location, price, guest_capacity, avail_start, avail_end, images, status, updated_at`

const upsertListingSQL = `
INSERT INTO listings
  (id, host_id, category, title, description, location, price, guest_capacity, avail_start, avail_end, images, status)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  host_id        = VALUES(host_id),
  category       = VALUES(category),
  title          = VALUES(title),
  description    = VALUES(description),
  location       = VALUES(location),
  price          = VALUES(price),
  guest_capacity = VALUES(guest_capacity),
  avail_start    = VALUES(avail_start),
  avail_end      = VALUES(avail_end),
  images         = VALUES(images),
  status         = VALUES(status),
  updated_at     = CURRENT_TIMESTAMP
`

const getListingSQL = `SELECT ` + listingColumns + ` FROM listings WHERE id = ?`

// Category "" matches every category.
const listPublishedSQL = `
SELECT ` + listingColumns + `
FROM listings
WHERE status = 'published' AND (? = '' OR category = ?)
ORDER BY created_at, id
`

const bookingColumns = `id, user_id, listing_id, host_id, location, price, final_price, nights, status, created_at`

const insertBookingsPrefix = "INSERT INTO bookings\n  (" + bookingColumns + ")\nVALUES "

// Sync may re-import a booking; keep its id and refresh the rest.
const insertBookingsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  location    = VALUES(location),\n" +
	"  price       = VALUES(price),\n" +
	"  final_price = VALUES(final_price),\n" +
	"  nights      = VALUES(nights),\n" +
	"  status      = VALUES(status)\n"

const getBookingSQL = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

const listBookingsByUserSQL = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY created_at, id`

const listBookingsByHostSQL = `SELECT ` + bookingColumns + ` FROM bookings WHERE host_id = ? ORDER BY created_at, id`

const updateBookingStatusSQL = `UPDATE bookings SET status = ? WHERE id = ?`

const insertFavoriteSQL = `INSERT IGNORE INTO favorites (user_id, listing_id) VALUES (?, ?)`

const deleteFavoriteSQL = `DELETE FROM favorites WHERE user_id = ? AND listing_id = ?`

const listFavoritesSQL = `
SELECT l.id, l.host_id, l.category, l.title, l.description, l.location, l.price, l.guest_capacity,
       l.avail_start, l.avail_end, l.images, l.status, l.updated_at
FROM favorites f
JOIN listings l ON l.id = f.listing_id
WHERE f.user_id = ?
ORDER BY f.created_at DESC, l.id
`

const insertThreadSQL = `INSERT INTO threads (id, guest_id, host_id, listing_id) VALUES (?, ?, ?, ?)`

const getThreadSQL = `SELECT id, guest_id, host_id, listing_id, created_at FROM threads WHERE id = ?`

const findThreadSQL = `SELECT id, guest_id, host_id, listing_id, created_at FROM threads WHERE guest_id = ? AND host_id = ? AND listing_id = ?`

// Note: `text` is reserved; keep it quoted everywhere.
const insertMessageSQL = "INSERT INTO messages (id, thread_id, sender_id, local_id, `text`, sent_at) VALUES (?, ?, ?, ?, ?, ?)"

const listMessagesSQL = "SELECT id, thread_id, sender_id, local_id, `text`, sent_at FROM messages WHERE thread_id = ? ORDER BY sent_at, id"
